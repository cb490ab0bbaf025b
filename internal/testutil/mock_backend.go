// Package testutil provides testing utilities for the cache and realtime
// packages.
package testutil

import (
	"net/http"
	"sync"
)

// MockBackend is an origin handler with per-path canned responses and an
// invocation counter, used to prove that cache hits bypass the handler.
type MockBackend struct {
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	CallCount int
}

// NewMockBackend creates a new mock origin backend.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		handlers: make(map[string]http.HandlerFunc),
	}
}

// ServeHTTP implements http.Handler. Every invocation is counted, including
// those for paths without a configured response.
func (m *MockBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.CallCount++
	handler := m.handlers[r.URL.Path]
	m.mu.Unlock()

	if handler != nil {
		handler(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status": "ok"}`))
}

// SetHandler sets a custom handler for a specific path.
func (m *MockBackend) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetJSON configures a JSON response with the given status for a path.
func (m *MockBackend) SetJSON(path string, status int, body string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

// Calls returns the number of times the backend handler ran.
func (m *MockBackend) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.CallCount
}

// Reset clears the invocation counter.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
}
