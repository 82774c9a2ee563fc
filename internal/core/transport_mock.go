package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type mockEntry struct {
	pattern   string
	responses []mockResponse
}

type mockResponse struct {
	out string
	err error
}

// MockTransport is a scripted Transport for tests. Responses are registered
// against a command prefix; repeated registrations for the same prefix are
// consumed in order, with the last one sticky.
type MockTransport struct {
	mu      sync.Mutex
	entries []*mockEntry
	calls   []string
}

func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// OnExecute scripts the output for any command starting with pattern.
func (m *MockTransport) OnExecute(pattern, out string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.pattern == pattern {
			e.responses = append(e.responses, mockResponse{out, err})
			return
		}
	}
	m.entries = append(m.entries, &mockEntry{
		pattern:   pattern,
		responses: []mockResponse{{out, err}},
	})
}

func (m *MockTransport) Execute(ctx context.Context, name string, args ...string) (string, error) {
	full := strings.Join(append([]string{name}, args...), " ")

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, full)

	for _, e := range m.entries {
		if strings.HasPrefix(full, e.pattern) {
			r := e.responses[0]
			if len(e.responses) > 1 {
				e.responses = e.responses[1:]
			}
			return r.out, r.err
		}
	}
	return "", fmt.Errorf("mock transport: unexpected command %q", full)
}

func (m *MockTransport) Close() error { return nil }

// Calls returns every executed command, in order.
func (m *MockTransport) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// AssertCalled reports whether any executed command starts with pattern.
func (m *MockTransport) AssertCalled(pattern string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if strings.HasPrefix(c, pattern) {
			return true
		}
	}
	return false
}

// CallCount returns how many executed commands start with pattern.
func (m *MockTransport) CallCount(pattern string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if strings.HasPrefix(c, pattern) {
			n++
		}
	}
	return n
}
