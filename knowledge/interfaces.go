package knowledge

import (
	"context"

	"github.com/poiesic/docpipe/core"
)

// Uploader submits an artifact file to the remote knowledge store.
// Implementations must be thread-safe for concurrent use.
type Uploader interface {
	// Upload submits the file at artifactPath and returns the outcome.
	// Upload never fails with a Go error: transport and API failures are
	// returned as data in the outcome's Error field.
	Upload(ctx context.Context, artifactPath string) *core.UploadOutcome
}

// Registrar adds an uploaded file to a remote knowledge collection.
type Registrar interface {
	// Register adds the remote file identified by fileID to the
	// configured collection.
	Register(ctx context.Context, fileID string) error
}
