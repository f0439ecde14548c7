package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/docpipe/core"
)

// MockUploader is a test double for knowledge.Uploader.
// It allows custom behavior injection via function fields and is safe for
// concurrent use.
type MockUploader struct {
	// UploadFunc is called by Upload if set.
	// If nil, uses default behavior: a deterministic ID derived from the
	// artifact path.
	UploadFunc func(ctx context.Context, artifactPath string) *core.UploadOutcome

	mu        sync.Mutex
	callCount int
	calls     []string
}

// NewMockUploader creates a mock uploader with default behavior.
func NewMockUploader() *MockUploader {
	return &MockUploader{}
}

// Upload records the call and returns the configured or default outcome.
func (m *MockUploader) Upload(ctx context.Context, artifactPath string) *core.UploadOutcome {
	m.mu.Lock()
	m.callCount++
	m.calls = append(m.calls, artifactPath)
	m.mu.Unlock()

	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, artifactPath)
	}

	return &core.UploadOutcome{
		ID:           fmt.Sprintf("file-%s", artifactPath),
		Status:       "uploaded",
		ArtifactPath: artifactPath,
	}
}

// CallCount returns the number of times Upload was called.
func (m *MockUploader) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Calls returns the artifact paths Upload was called with, in order.
func (m *MockUploader) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockRegistrar is a test double for knowledge.Registrar.
type MockRegistrar struct {
	// RegisterFunc is called by Register if set.
	// If nil, Register succeeds.
	RegisterFunc func(ctx context.Context, fileID string) error

	mu    sync.Mutex
	calls []string
}

// NewMockRegistrar creates a mock registrar that records calls.
func NewMockRegistrar() *MockRegistrar {
	return &MockRegistrar{}
}

// Register records the call and returns the configured result.
func (m *MockRegistrar) Register(ctx context.Context, fileID string) error {
	m.mu.Lock()
	m.calls = append(m.calls, fileID)
	m.mu.Unlock()

	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, fileID)
	}
	return nil
}

// Calls returns the file IDs Register was called with, in order.
func (m *MockRegistrar) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
