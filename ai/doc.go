// Package ai defines the embedding collaborator used to derive vector
// embeddings for extracted document text.
//
// The Embedder interface abstracts over embedding providers. The openai
// subpackage implements it against any OpenAI-compatible API (Ollama,
// LocalAI, vLLM), and NopEmbedder serves runs with embeddings disabled.
// A nil vector is a valid, non-error result meaning no embedding was
// produced; the pipeline simply skips the sidecar file in that case.
package ai
