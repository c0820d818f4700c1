// Package interfaces defines the core interfaces used throughout the application.
package interfaces

import "github.com/Veraticus/keycat/pkg/types"

// KeyEventSink receives decoded key events.
type KeyEventSink interface {
	HandleEvent(ev types.KeyEvent)
}

// DataHandler processes raw data chunks from a stream.
type DataHandler interface {
	HandleData(data []byte)
}

// ScreenEventHandler reacts to terminal screen events.
type ScreenEventHandler interface {
	HandleScreenClear()
}

// TerminalSequenceDetector finds terminal escape sequences in output.
type TerminalSequenceDetector interface {
	DetectSequences(data []byte, handler ScreenEventHandler)
}
