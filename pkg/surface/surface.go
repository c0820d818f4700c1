// Package surface holds render targets for activity levels.
package surface

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Veraticus/keycat/pkg/activity"
)

// ErrCapacityExceeded is returned when the registry is full.
var ErrCapacityExceeded = errors.New("surface registry capacity exceeded")

// Surface renders the frame for an activity level.
type Surface interface {
	Render(level activity.Level) error
}

// Func adapts a plain function to the Surface interface.
type Func func(level activity.Level) error

// Render calls f.
func (f Func) Render(level activity.Level) error {
	return f(level)
}

// Registry is an append-only, bounded list of surfaces. It is not safe for
// concurrent use; the owning widget serializes access.
type Registry struct {
	capacity int
	surfaces []Surface
}

// NewRegistry creates a registry that holds at most capacity surfaces.
func NewRegistry(capacity int) *Registry {
	if capacity < 0 {
		capacity = 0
	}
	return &Registry{
		capacity: capacity,
		surfaces: make([]Surface, 0, capacity),
	}
}

// Register appends s and returns its slot. A nil interface is rejected;
// a nil pointer inside a non-nil interface is not detectable here, so
// surface types must tolerate a nil receiver in Render.
func (r *Registry) Register(s Surface) (int, error) {
	if s == nil {
		return -1, fmt.Errorf("register surface: nil surface")
	}
	if len(r.surfaces) >= r.capacity {
		return -1, fmt.Errorf("register surface (%d/%d slots used): %w", len(r.surfaces), r.capacity, ErrCapacityExceeded)
	}
	r.surfaces = append(r.surfaces, s)
	return len(r.surfaces) - 1, nil
}

// Len returns the number of registered surfaces.
func (r *Registry) Len() int {
	return len(r.surfaces)
}

// Cap returns the registry capacity.
func (r *Registry) Cap() int {
	return r.capacity
}

// Get returns the surface in slot.
func (r *Registry) Get(slot int) (Surface, bool) {
	if slot < 0 || slot >= len(r.surfaces) {
		return nil, false
	}
	return r.surfaces[slot], true
}

// Each calls fn for every surface in slot order.
func (r *Registry) Each(fn func(slot int, s Surface)) {
	for i, s := range r.surfaces {
		fn(i, s)
	}
}

// WriterSurface writes one line per level change to an io.Writer.
type WriterSurface struct {
	mu     sync.Mutex
	writer io.Writer
	prefix string
	last   activity.Level
	drawn  bool
}

// NewWriterSurface creates a trace surface writing to w.
func NewWriterSurface(w io.Writer, prefix string) *WriterSurface {
	return &WriterSurface{writer: w, prefix: prefix}
}

// Render writes the level if it differs from the last one written.
func (s *WriterSurface) Render(level activity.Level) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer == nil {
		return nil
	}
	if s.drawn && s.last == level {
		return nil
	}
	s.last = level
	s.drawn = true

	_, err := fmt.Fprintf(s.writer, "%slevel=%s frame=%d\n", s.prefix, level, level.Frame())
	return err
}
