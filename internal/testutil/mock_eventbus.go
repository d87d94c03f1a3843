// Package testutil provides shared testing utilities for lotar tests.
package testutil

import (
	"sync"

	"github.com/lotar-dev/lotar/internal/events"
)

// MockEventBus records every published event for assertions, instead of
// dispatching to handlers the way events.Bus does.
type MockEventBus struct {
	mu     sync.Mutex
	events []events.Event
}

// NewMockEventBus creates a new mock event bus.
func NewMockEventBus() *MockEventBus {
	return &MockEventBus{}
}

// Publish records a typed event.
func (m *MockEventBus) Publish(eventer events.Eventer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventer.ToEvent())
}

// Events returns all captured events.
func (m *MockEventBus) Events() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	eventsCopy := make([]events.Event, len(m.events))
	copy(eventsCopy, m.events)
	return eventsCopy
}

// Clear discards all captured events.
func (m *MockEventBus) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

// Count returns the number of captured events.
func (m *MockEventBus) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// CountByType returns the count of events of a specific type.
func (m *MockEventBus) CountByType(eventType events.Type) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, e := range m.events {
		if e.Type == eventType {
			count++
		}
	}
	return count
}

// FindByType returns events of a specific type.
func (m *MockEventBus) FindByType(eventType events.Type) []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found []events.Event
	for _, e := range m.events {
		if e.Type == eventType {
			found = append(found, e)
		}
	}
	return found
}

// LastEvent returns the last captured event, or nil if none.
func (m *MockEventBus) LastEvent() *events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.events) == 0 {
		return nil
	}
	last := m.events[len(m.events)-1]
	return &last
}

// HasEventType reports whether an event of the given type was published.
func (m *MockEventBus) HasEventType(eventType events.Type) bool {
	return m.CountByType(eventType) > 0
}

// TestingT is the interface expected by testing.T (for helper functions).
type TestingT interface {
	Helper()
	Errorf(format string, args ...any)
}

// AssertEventType asserts that an event of the given type was published.
func (m *MockEventBus) AssertEventType(t TestingT, eventType events.Type) bool {
	t.Helper()
	if !m.HasEventType(eventType) {
		t.Errorf("expected event type %q, but none was published. Got events: %v", eventType, m.Events())
		return false
	}
	return true
}

// AssertEventCount asserts the number of events of a type.
func (m *MockEventBus) AssertEventCount(t TestingT, eventType events.Type, expected int) bool {
	t.Helper()
	count := m.CountByType(eventType)
	if count != expected {
		t.Errorf("expected %d events of type %q, got %d", expected, eventType, count)
		return false
	}
	return true
}
