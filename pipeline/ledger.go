package pipeline

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"github.com/poiesic/docpipe/core"
)

// LedgerFileName is the upload ledger file written to the output directory.
const LedgerFileName = "upload_results.json"

// UploadLedger is the durable mapping from artifact path to the last upload
// outcome. Once an artifact has a non-error outcome it is never re-uploaded
// by later runs. The ledger's mutex is independent of the progress store's.
type UploadLedger struct {
	path    string
	mu      sync.Mutex
	entries map[string]*core.UploadOutcome
	logger  *slog.Logger
}

// NewUploadLedger creates an empty ledger backed by the file at path.
func NewUploadLedger(path string, logger *slog.Logger) *UploadLedger {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadLedger{
		path:    path,
		entries: make(map[string]*core.UploadOutcome),
		logger:  logger.With("store", "ledger"),
	}
}

// Load reads prior upload outcomes from disk. A missing or malformed file
// means no prior outcomes and is not an error.
func (l *UploadLedger) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		l.entries = make(map[string]*core.UploadOutcome)
		return nil
	}

	entries := make(map[string]*core.UploadOutcome)
	if err := json.Unmarshal(data, &entries); err != nil {
		l.logger.Warn("upload ledger is malformed, starting fresh", "path", l.path, "err", err)
		entries = make(map[string]*core.UploadOutcome)
	}
	l.entries = entries
	return nil
}

// Save overwrites the backing file with the current mapping.
func (l *UploadLedger) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0o644)
}

// Uploaded reports whether artifact already has a completed, non-error
// outcome. Failed outcomes do not count and stay retryable.
func (l *UploadLedger) Uploaded(artifact string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[artifact].Ok()
}

// Record stores the outcome of an upload attempt, replacing any prior one.
func (l *UploadLedger) Record(artifact string, outcome *core.UploadOutcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[artifact] = outcome
}

// Len returns the number of recorded outcomes.
func (l *UploadLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
