package preview

import "github.com/Veraticus/keycat/pkg/activity"

// rateHistory counts key presses per second over a sliding window.
type rateHistory struct {
	buckets []float64
	current int64 // second of the last bucket
	started bool
}

func newRateHistory(seconds int) *rateHistory {
	if seconds < 1 {
		seconds = 1
	}
	return &rateHistory{buckets: make([]float64, seconds)}
}

// add counts one press at now.
func (h *rateHistory) add(now activity.Timestamp) {
	h.roll(now)
	h.buckets[len(h.buckets)-1]++
}

// roll shifts the window so its last bucket covers now. Times earlier than
// the current bucket are counted in the current bucket.
func (h *rateHistory) roll(now activity.Timestamp) {
	sec := int64(now) / 1000
	if !h.started {
		h.current = sec
		h.started = true
		return
	}

	shift := sec - h.current
	if shift <= 0 {
		return
	}
	h.current = sec

	n := int64(len(h.buckets))
	if shift >= n {
		clear(h.buckets)
		return
	}
	copy(h.buckets, h.buckets[shift:])
	clear(h.buckets[n-shift:])
}

func (h *rateHistory) values() []float64 {
	out := make([]float64, len(h.buckets))
	copy(out, h.buckets)
	return out
}
