package sink

import (
	"context"
	"sync"
)

// MockSink records events in memory for tests.
type MockSink struct {
	mu     sync.Mutex
	events []Event
	Err    error // Returned from every Track call when set
}

// NewMockSink creates an empty mock sink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Track records the event and returns m.Err.
func (m *MockSink) Track(ctx context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return m.Err
}

// Events returns a copy of the recorded events.
func (m *MockSink) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Named returns the recorded events called name.
func (m *MockSink) Named(name string) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops the recorded events.
func (m *MockSink) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

// Verify MockSink implements AnalyticsSink
var _ AnalyticsSink = (*MockSink)(nil)
