// Package knowledge defines the remote knowledge-store collaborator:
// uploading extracted artifacts and registering the resulting remote file
// identifiers into a knowledge collection.
//
// Upload failures are reported as data on the UploadOutcome rather than as
// Go errors, so one failed artifact never aborts its siblings and failed
// attempts stay retryable on later runs.
package knowledge
