package convert

import "context"

// Converter extracts text content from a document file.
// Implementations must be thread-safe for concurrent use.
type Converter interface {
	// Convert extracts the text content of the file at path.
	// An empty string with a nil error is a valid result meaning the
	// document contained no extractable text.
	// Returns an error for format-specific or I/O failures.
	Convert(ctx context.Context, path string) (string, error)
}
