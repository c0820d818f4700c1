// Package testutil provides thread-safe fakes shared by package tests.
package testutil

import (
	"sync"

	"github.com/Veraticus/keycat/pkg/activity"
)

// FakeClock is a manually advanced activity.Clock.
type FakeClock struct {
	mu  sync.Mutex
	now activity.Timestamp
}

// NewFakeClock creates a clock reading start.
func NewFakeClock(start activity.Timestamp) *FakeClock {
	return &FakeClock{now: start}
}

// Now implements activity.Clock
func (c *FakeClock) Now() activity.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *FakeClock) Set(t activity.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by ms milliseconds.
func (c *FakeClock) Advance(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += activity.Timestamp(ms)
}

// MockSurface records every level it is asked to render.
type MockSurface struct {
	mu        sync.Mutex
	renders   []activity.Level
	attempts  int
	renderErr error
}

// NewMockSurface creates a new mock surface
func NewMockSurface() *MockSurface {
	return &MockSurface{
		renders: []activity.Level{},
	}
}

// Render implements surface.Surface
func (m *MockSurface) Render(level activity.Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Always track the attempt
	m.attempts++

	if m.renderErr != nil {
		return m.renderErr
	}

	m.renders = append(m.renders, level)
	return nil
}

// GetRenders returns a copy of successfully rendered levels
func (m *MockSurface) GetRenders() []activity.Level {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]activity.Level, len(m.renders))
	copy(result, m.renders)
	return result
}

// GetAttempts returns the number of Render calls, including failures
func (m *MockSurface) GetAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// LastRender returns the most recent rendered level
func (m *MockSurface) LastRender() (activity.Level, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.renders) == 0 {
		return activity.Idle, false
	}
	return m.renders[len(m.renders)-1], true
}

// SetError sets the error to return on Render calls
func (m *MockSurface) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderErr = err
}

// Clear resets the mock state
func (m *MockSurface) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders = []activity.Level{}
	m.attempts = 0
	m.renderErr = nil
}

// MockScreenEventHandler counts screen clear notifications
type MockScreenEventHandler struct {
	mu         sync.Mutex
	clearCount int
}

// HandleScreenClear implements interfaces.ScreenEventHandler
func (m *MockScreenEventHandler) HandleScreenClear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCount++
}

// GetClearCount returns how many clears were reported
func (m *MockScreenEventHandler) GetClearCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearCount
}
