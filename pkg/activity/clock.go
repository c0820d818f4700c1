package activity

import "time"

// Clock supplies monotonic timestamps.
type Clock interface {
	Now() Timestamp
}

// MonotonicClock measures milliseconds since it was created. It relies on the
// monotonic reading carried by time.Time, so wall clock jumps do not affect it.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock starts a clock at zero.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Now returns the milliseconds elapsed since the clock was created.
func (c *MonotonicClock) Now() Timestamp {
	return Timestamp(time.Since(c.start).Milliseconds())
}
