// Package pipeline provides the resumable, concurrent batch-processing
// pipeline for document conversion, embedding, and upload.
//
// The Service type manages the full workflow:
//   - Discovering candidate files by extension
//   - Converting each file to a text artifact via the converter collaborator
//   - Deriving embedding sidecars via the embedding collaborator
//   - Uploading artifacts to the remote knowledge store
//   - Registering uploaded files into a knowledge collection
//
// Work is dispatched in fixed-size batches over a bounded worker pool, and
// per-file progress is persisted at every batch boundary, so an interrupted
// run loses at most one batch of work and resumes without redoing the rest.
// Per-file failures are accumulated and reported; they never abort the run.
package pipeline
