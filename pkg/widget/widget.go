// Package widget ties the activity tracker, the level classifier and the
// surface registry together and performs dispatch.
package widget

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/keycat/pkg/activity"
	"github.com/Veraticus/keycat/pkg/debug"
	"github.com/Veraticus/keycat/pkg/interfaces"
	"github.com/Veraticus/keycat/pkg/surface"
	"github.com/Veraticus/keycat/pkg/types"
)

// Policy controls when a press redraws surfaces.
type Policy int

const (
	// RedrawOnChange renders only when the level changes.
	RedrawOnChange Policy = iota
	// RedrawAlways renders on every qualifying press.
	RedrawAlways
)

// String returns the config name of the policy.
func (p Policy) String() string {
	switch p {
	case RedrawOnChange:
		return "on_change"
	case RedrawAlways:
		return "always"
	default:
		return "unknown"
	}
}

// ParsePolicy parses "on_change" or "always".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "on_change", "on-change", "onchange":
		return RedrawOnChange, nil
	case "always":
		return RedrawAlways, nil
	default:
		return RedrawOnChange, fmt.Errorf("unknown redraw policy %q (use on_change or always)", s)
	}
}

// Options configures a Widget.
type Options struct {
	Ladder   activity.Ladder
	Capacity int
	Policy   Policy
	Clock    activity.Clock
}

// DefaultOptions returns the 1s/5s ladder, four surface slots, redraw on
// change and a monotonic clock.
func DefaultOptions() Options {
	return Options{
		Ladder:   activity.DefaultLadder(),
		Capacity: 4,
		Policy:   RedrawOnChange,
		Clock:    activity.NewMonotonicClock(),
	}
}

// Widget owns the activity state and the surfaces that display it. All
// methods are safe for concurrent use; one mutex covers the whole
// record, classify, update and render sequence.
type Widget struct {
	mu       sync.Mutex
	clock    activity.Clock
	ladder   activity.Ladder
	policy   Policy
	tracker  *activity.Tracker
	registry *surface.Registry
	level    activity.Level
}

// Ensure Widget implements KeyEventSink
var _ interfaces.KeyEventSink = (*Widget)(nil)

// New creates a widget in the Idle level with no recorded activity.
func New(opts Options) (*Widget, error) {
	if err := opts.Ladder.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ladder: %w", err)
	}
	if opts.Capacity < 1 {
		return nil, fmt.Errorf("surface capacity must be at least 1, got %d", opts.Capacity)
	}
	if opts.Clock == nil {
		opts.Clock = activity.NewMonotonicClock()
	}

	return &Widget{
		clock:    opts.Clock,
		ladder:   opts.Ladder,
		policy:   opts.Policy,
		tracker:  activity.NewTracker(),
		registry: surface.NewRegistry(opts.Capacity),
		level:    opts.Ladder.Fallback,
	}, nil
}

// Register adds s and draws it once with the current level.
func (w *Widget) Register(s surface.Surface) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	slot, err := w.registry.Register(s)
	if err != nil {
		return slot, err
	}
	if err := s.Render(w.level); err != nil {
		debug.Logf("initial render of surface %d failed: %v", slot, err)
	}
	return slot, nil
}

// HandleEvent is the intake entry point. Releases are ignored; presses are
// dispatched at the current clock time.
func (w *Widget) HandleEvent(ev types.KeyEvent) {
	if !ev.Pressed {
		return
	}
	w.Dispatch(w.clock.Now())
}

// Dispatch records a press at now, reclassifies and renders surfaces
// according to the redraw policy. It returns the resulting level.
func (w *Widget) Dispatch(now activity.Timestamp) activity.Level {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tracker.RecordActivity(now)
	changed := w.reclassify(now)
	if changed || w.policy == RedrawAlways {
		w.renderAll()
	}
	return w.level
}

// Refresh reclassifies at now without recording activity and renders
// surfaces only if the level changed.
func (w *Widget) Refresh(now activity.Timestamp) activity.Level {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.reclassify(now) {
		w.renderAll()
	}
	return w.level
}

// Level returns the cached level from the last classification.
func (w *Widget) Level() activity.Level {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.level
}

// LastActivity returns the last press time and whether one was recorded.
func (w *Widget) LastActivity() (activity.Timestamp, bool) {
	return w.tracker.LastActivity()
}

// Now returns the widget clock's current time.
func (w *Widget) Now() activity.Timestamp {
	return w.clock.Now()
}

// Surfaces returns the number of registered surfaces.
func (w *Widget) Surfaces() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.registry.Len()
}

// StartDecay re-evaluates the level every interval until stop is closed, so
// the display falls back to calmer frames once typing stops. A non-positive
// interval leaves the widget purely event driven.
func (w *Widget) StartDecay(interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.Refresh(w.clock.Now())
			case <-stop:
				return
			}
		}
	}()
}

// reclassify updates the cached level and reports whether it changed.
// Caller must hold w.mu.
func (w *Widget) reclassify(now activity.Timestamp) bool {
	next := w.ladder.Fallback
	if last, seen := w.tracker.LastActivity(); seen {
		if now < last {
			debug.Logf("clock went backwards (now=%d, last press=%d); treating as most recent", now, last)
		}
		next = w.ladder.Classify(now, last)
	}

	if next == w.level {
		return false
	}
	debug.Logf("level %s -> %s", w.level, next)
	w.level = next
	return true
}

// renderAll renders every surface with the cached level. Render failures are
// logged and do not stop the remaining surfaces. Caller must hold w.mu.
func (w *Widget) renderAll() {
	level := w.level
	w.registry.Each(func(slot int, s surface.Surface) {
		if err := s.Render(level); err != nil {
			debug.Logf("render of surface %d failed: %v", slot, err)
		}
	})
}
