package pipeline

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
)

// ProgressFileName is the progress record file written to the output directory.
const ProgressFileName = "processing_progress.json"

// ProgressStore is the durable mapping from source file path to artifact
// path. The presence of an entry whose artifact still exists on disk means
// the source has been handled, whether the conversion succeeded or wrote an
// error placeholder.
//
// The in-memory map and its file are guarded by one mutex; saves are full
// overwrites so a resumed run sees whole completed batches only.
type ProgressStore struct {
	path    string
	mu      sync.Mutex
	entries map[string]string
	logger  *slog.Logger
}

// NewProgressStore creates an empty store backed by the file at path.
func NewProgressStore(path string, logger *slog.Logger) *ProgressStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressStore{
		path:    path,
		entries: make(map[string]string),
		logger:  logger.With("store", "progress"),
	}
}

// Load reads prior progress from disk. A missing or malformed file means
// no prior progress and is not an error.
func (s *ProgressStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		s.entries = make(map[string]string)
		return nil
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("progress file is malformed, starting fresh", "path", s.path, "err", err)
		entries = make(map[string]string)
	}
	s.entries = entries
	return nil
}

// Save overwrites the backing file with the current mapping.
func (s *ProgressStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Done reports whether source has already been handled: it has an entry and
// the recorded artifact still exists on disk. Deleting the artifact or the
// entry re-enables processing.
func (s *ProgressStore) Done(source string) bool {
	s.mu.Lock()
	artifact, ok := s.entries[source]
	s.mu.Unlock()
	if !ok {
		return false
	}
	_, err := os.Stat(artifact)
	return err == nil
}

// Mark records that source was handled and its artifact written.
func (s *ProgressStore) Mark(source, artifact string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[source] = artifact
}

// Len returns the number of recorded entries.
func (s *ProgressStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a copy of the source-to-artifact mapping.
func (s *ProgressStore) Entries() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		entries[k] = v
	}
	return entries
}
