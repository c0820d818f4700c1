package monitor

import (
	"sync"
	"time"

	"github.com/Veraticus/keycat/pkg/interfaces"
)

// OutputMonitor inspects output from the wrapped program and tells the
// screen event handler when the screen was repainted.
type OutputMonitor struct {
	mu             sync.Mutex
	detector       interfaces.TerminalSequenceDetector
	handler        interfaces.ScreenEventHandler
	lastOutputTime time.Time
	bytesSeen      int64
}

// Ensure OutputMonitor implements DataHandler
var _ interfaces.DataHandler = (*OutputMonitor)(nil)

// NewOutputMonitor creates a new output monitor
func NewOutputMonitor(handler interfaces.ScreenEventHandler) *OutputMonitor {
	return &OutputMonitor{
		detector:       NewTerminalSequenceDetector(),
		handler:        handler,
		lastOutputTime: time.Now(),
	}
}

// SetScreenEventHandler sets the handler for screen events
func (om *OutputMonitor) SetScreenEventHandler(handler interfaces.ScreenEventHandler) {
	om.mu.Lock()
	defer om.mu.Unlock()
	om.handler = handler
}

// HandleData implements interfaces.DataHandler
func (om *OutputMonitor) HandleData(data []byte) {
	om.mu.Lock()
	om.lastOutputTime = time.Now()
	om.bytesSeen += int64(len(data))
	handler := om.handler
	// The detector keeps a tail buffer, so detection stays under the lock
	var cleared bool
	if handler != nil {
		om.detector.DetectSequences(data, screenClearFunc(func() { cleared = true }))
	}
	om.mu.Unlock()

	// Call the handler outside of the lock
	if cleared {
		handler.HandleScreenClear()
	}
}

// GetLastOutputTime returns the last time output was received
func (om *OutputMonitor) GetLastOutputTime() time.Time {
	om.mu.Lock()
	defer om.mu.Unlock()
	return om.lastOutputTime
}

// BytesSeen returns the total output size observed
func (om *OutputMonitor) BytesSeen() int64 {
	om.mu.Lock()
	defer om.mu.Unlock()
	return om.bytesSeen
}

// screenClearFunc adapts a function to interfaces.ScreenEventHandler
type screenClearFunc func()

func (f screenClearFunc) HandleScreenClear() {
	f()
}
