package input

import (
	"sync"

	"github.com/Veraticus/keycat/pkg/interfaces"
)

// Monitor decodes raw input chunks and forwards key events to a sink.
type Monitor struct {
	mu      sync.Mutex
	decoder *Decoder
	sink    interfaces.KeyEventSink
	presses int
}

// Ensure Monitor implements DataHandler
var _ interfaces.DataHandler = (*Monitor)(nil)

// NewMonitor creates a monitor feeding sink.
func NewMonitor(sink interfaces.KeyEventSink) *Monitor {
	return &Monitor{
		decoder: NewDecoder(),
		sink:    sink,
	}
}

// HandleData implements interfaces.DataHandler
func (m *Monitor) HandleData(data []byte) {
	m.mu.Lock()
	events := m.decoder.Decode(data)
	for _, ev := range events {
		if ev.Pressed {
			m.presses++
		}
	}
	m.mu.Unlock()

	if m.sink == nil {
		return
	}
	for _, ev := range events {
		m.sink.HandleEvent(ev)
	}
}

// Presses returns the number of key presses seen so far.
func (m *Monitor) Presses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presses
}
