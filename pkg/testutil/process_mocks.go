package testutil

import (
	"sync"

	"github.com/Veraticus/keycat/pkg/types"
)

// MockDataHandler is a mock implementation of interfaces.DataHandler for testing
type MockDataHandler struct {
	mu     sync.Mutex
	chunks [][]byte
}

// NewMockDataHandler creates a new mock data handler
func NewMockDataHandler() *MockDataHandler {
	return &MockDataHandler{}
}

// HandleData implements the DataHandler interface
func (m *MockDataHandler) HandleData(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chunk := make([]byte, len(data))
	copy(chunk, data)
	m.chunks = append(m.chunks, chunk)
}

// GetData returns all handled data concatenated
func (m *MockDataHandler) GetData() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []byte
	for _, c := range m.chunks {
		all = append(all, c...)
	}
	return all
}

// GetCallCount returns how many times HandleData was called
func (m *MockDataHandler) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks)
}

// MockKeyEventSink is a mock implementation of interfaces.KeyEventSink for testing
type MockKeyEventSink struct {
	mu     sync.Mutex
	events []types.KeyEvent
}

// NewMockKeyEventSink creates a new mock sink
func NewMockKeyEventSink() *MockKeyEventSink {
	return &MockKeyEventSink{}
}

// HandleEvent implements the KeyEventSink interface
func (m *MockKeyEventSink) HandleEvent(ev types.KeyEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// GetEvents returns a copy of received events
func (m *MockKeyEventSink) GetEvents() []types.KeyEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]types.KeyEvent, len(m.events))
	copy(result, m.events)
	return result
}

// GetPresses returns only the press events
func (m *MockKeyEventSink) GetPresses() []types.KeyEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []types.KeyEvent
	for _, ev := range m.events {
		if ev.Pressed {
			result = append(result, ev)
		}
	}
	return result
}
