package activity

import "sync"

// Tracker holds the timestamp of the most recent qualifying press.
type Tracker struct {
	mu   sync.RWMutex
	last Timestamp
	seen bool
}

// NewTracker creates a tracker that has never seen a press.
func NewTracker() *Tracker {
	return &Tracker{}
}

// RecordActivity stores now as the last press time. The stored value never
// moves backwards.
func (t *Tracker) RecordActivity(now Timestamp) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.seen && now < t.last {
		return
	}
	t.last = now
	t.seen = true
}

// LastActivity returns the last press time and whether any press was recorded.
func (t *Tracker) LastActivity() (Timestamp, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.last, t.seen
}
