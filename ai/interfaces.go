package ai

import "context"

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// A nil vector with a nil error means no embedding was produced,
	// which is a valid outcome and not a failure.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// NopEmbedder is an Embedder that never produces embeddings.
// It is injected when the embedding stage is disabled.
type NopEmbedder struct{}

// EmbedText returns no embedding.
func (NopEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}
