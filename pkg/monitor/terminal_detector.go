// Package monitor watches the wrapped program's output for screen events.
package monitor

import (
	"bytes"

	"github.com/Veraticus/keycat/pkg/interfaces"
)

// ANSI sequences after which the status line has to be redrawn
var screenClearSequences = [][]byte{
	[]byte("\033[2J"),     // Clear entire screen
	[]byte("\033[3J"),     // Clear entire screen and scrollback
	[]byte("\033[H"),      // Move cursor to home position (often follows clear)
	[]byte("\033[0J"),     // Clear from cursor to end of screen
	[]byte("\033[1J"),     // Clear from cursor to beginning of screen
	[]byte("\033c"),       // Reset terminal
	[]byte("\033[?1049h"), // Enter alternate screen
	[]byte("\033[?1049l"), // Leave alternate screen
}

// tailKeep is the longest sequence minus one, enough to join a sequence
// split across two chunks.
const tailKeep = 7

// TerminalSequenceDetector detects screen clearing escape sequences in output
type TerminalSequenceDetector struct {
	// Tail of the previous chunk, for sequences split across chunks
	buffer []byte
}

// NewTerminalSequenceDetector creates a new terminal sequence detector
func NewTerminalSequenceDetector() *TerminalSequenceDetector {
	return &TerminalSequenceDetector{
		buffer: make([]byte, 0, 256),
	}
}

// Ensure TerminalSequenceDetector implements TerminalSequenceDetector
var _ interfaces.TerminalSequenceDetector = (*TerminalSequenceDetector)(nil)

// DetectSequences reports at most one screen clear per chunk to handler.
func (t *TerminalSequenceDetector) DetectSequences(data []byte, handler interfaces.ScreenEventHandler) {
	if handler == nil {
		return
	}

	t.buffer = append(t.buffer, data...)

	for _, seq := range screenClearSequences {
		if bytes.Contains(t.buffer, seq) {
			// Drop what we matched so the next chunk cannot re-trigger it
			t.buffer = t.buffer[:0]
			handler.HandleScreenClear()
			return
		}
	}

	if len(t.buffer) > tailKeep {
		t.buffer = append(t.buffer[:0], t.buffer[len(t.buffer)-tailKeep:]...)
	}
}
