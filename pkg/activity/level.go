// Package activity tracks key-press activity and classifies how recently the
// user typed into a small set of animation levels.
package activity

// Level is the activity level used to pick an animation frame.
type Level int

const (
	// Idle means no press within the typing band.
	Idle Level = iota
	// Typing means a press within the typing band but not the burst band.
	Typing
	// Bursting means a press within the burst band.
	Bursting
)

// Levels lists every level in frame order.
var Levels = []Level{Idle, Typing, Bursting}

// String returns the lower-case level name.
func (l Level) String() string {
	switch l {
	case Idle:
		return "idle"
	case Typing:
		return "typing"
	case Bursting:
		return "bursting"
	default:
		return "unknown"
	}
}

// Frame returns the frame identifier consumed by renderers.
func (l Level) Frame() int {
	return int(l)
}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	return l >= Idle && l <= Bursting
}
