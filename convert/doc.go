// Package convert defines the document-to-text conversion collaborator.
//
// Conversion is an opaque capability: the pipeline hands a converter a
// source file path and receives extracted text back. The only shipped
// implementation shells out to an external converter command (MarkItDown
// by default), which keeps format-specific parsing out of this module.
package convert
