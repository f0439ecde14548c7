package pipeline

import "errors"

var (
	// ErrFinderRequired is returned when a file finder is not provided.
	ErrFinderRequired = errors.New("file finder required")

	// ErrConverterRequired is returned when a converter is not provided.
	ErrConverterRequired = errors.New("converter required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	// Runs without embeddings inject ai.NopEmbedder rather than nil.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrOutputDirRequired is returned when no output directory is configured.
	ErrOutputDirRequired = errors.New("output directory required")

	// ErrInvalidMaxAttempts is returned when retry is configured with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")
)
