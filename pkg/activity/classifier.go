package activity

import (
	"fmt"
	"time"
)

// Timestamp is a monotonic time in milliseconds since an arbitrary epoch.
type Timestamp int64

// Millis converts a duration to a millisecond delta.
func Millis(d time.Duration) int64 {
	return d.Milliseconds()
}

// Band maps deltas strictly below Below to Level.
type Band struct {
	Below time.Duration
	Level Level
}

// Ladder is an ordered list of bands; the first band whose threshold exceeds
// the delta wins, otherwise Fallback applies.
type Ladder struct {
	Bands    []Band
	Fallback Level
}

const (
	// DefaultBurstThreshold is the upper bound of the Bursting band.
	DefaultBurstThreshold = 1000 * time.Millisecond
	// DefaultTypingThreshold is the upper bound of the Typing band.
	DefaultTypingThreshold = 5000 * time.Millisecond
)

// DefaultLadder returns the 1s/5s ladder.
func DefaultLadder() Ladder {
	return NewLadder(DefaultBurstThreshold, DefaultTypingThreshold)
}

// NewLadder builds the three-level ladder from its two thresholds.
func NewLadder(burst, typing time.Duration) Ladder {
	return Ladder{
		Bands: []Band{
			{Below: burst, Level: Bursting},
			{Below: typing, Level: Typing},
		},
		Fallback: Idle,
	}
}

// Validate checks that the ladder has at least one band and that thresholds
// are positive and strictly increasing.
func (l Ladder) Validate() error {
	if len(l.Bands) == 0 {
		return fmt.Errorf("ladder has no bands")
	}
	var prev time.Duration
	for i, b := range l.Bands {
		if b.Below <= 0 {
			return fmt.Errorf("band %d (%s): threshold must be positive, got %v", i, b.Level, b.Below)
		}
		if b.Below <= prev {
			return fmt.Errorf("band %d (%s): threshold %v must be greater than %v", i, b.Level, b.Below, prev)
		}
		if !b.Level.Valid() {
			return fmt.Errorf("band %d: unknown level %d", i, int(b.Level))
		}
		prev = b.Below
	}
	if !l.Fallback.Valid() {
		return fmt.Errorf("unknown fallback level %d", int(l.Fallback))
	}
	return nil
}

// Classify maps the elapsed time between last and now to a level.
// Negative deltas are treated as zero.
func (l Ladder) Classify(now, last Timestamp) Level {
	delta := int64(now - last)
	if delta < 0 {
		delta = 0
	}
	for _, b := range l.Bands {
		if delta < Millis(b.Below) {
			return b.Level
		}
	}
	return l.Fallback
}

var defaultLadder = DefaultLadder()

// Classify maps the elapsed time between last and now to a level using the
// default ladder: under 1000ms is Bursting, under 5000ms is Typing, anything
// else is Idle.
func Classify(now, last Timestamp) Level {
	return defaultLadder.Classify(now, last)
}
