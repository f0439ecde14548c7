package mock

import (
	"context"
	"sync"
)

// MockConverter is a test double for convert.Converter.
// It allows custom behavior injection via function fields and is safe for
// concurrent use.
type MockConverter struct {
	// ConvertFunc is called by Convert if set.
	// If nil, uses default behavior based on Responses.
	ConvertFunc func(ctx context.Context, path string) (string, error)

	// Responses maps source paths to extracted text for the default
	// behavior. Paths not present return an empty string.
	Responses map[string]string

	// Errors maps source paths to conversion errors for the default
	// behavior.
	Errors map[string]error

	mu        sync.Mutex
	callCount int
	calls     []string
}

// NewMockConverter creates a mock converter with empty response tables.
func NewMockConverter() *MockConverter {
	return &MockConverter{
		Responses: make(map[string]string),
		Errors:    make(map[string]error),
	}
}

// Convert returns the configured response or error for path.
func (m *MockConverter) Convert(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.calls = append(m.calls, path)
	m.mu.Unlock()

	if m.ConvertFunc != nil {
		return m.ConvertFunc(ctx, path)
	}
	if err, ok := m.Errors[path]; ok {
		return "", err
	}
	return m.Responses[path], nil
}

// CallCount returns the number of times Convert was called.
func (m *MockConverter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Calls returns the source paths Convert was called with, in order.
func (m *MockConverter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
