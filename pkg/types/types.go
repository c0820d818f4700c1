// Package types contains shared data structures used across the application.
package types

// KeyEvent is a position state change reported by the input layer.
type KeyEvent struct {
	// Position identifies the key (rune value or escape sequence code).
	Position int
	// Pressed is true for a press transition and false for a release.
	Pressed bool
}

// Press returns a press event for position.
func Press(position int) KeyEvent {
	return KeyEvent{Position: position, Pressed: true}
}

// Release returns a release event for position.
func Release(position int) KeyEvent {
	return KeyEvent{Position: position, Pressed: false}
}
