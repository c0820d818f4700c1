// Package status draws the cat on the bottom line of the terminal.
package status

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Veraticus/keycat/pkg/activity"
	"github.com/Veraticus/keycat/pkg/frames"
	"github.com/Veraticus/keycat/pkg/interfaces"
	"github.com/Veraticus/keycat/pkg/surface"
)

const (
	defaultNormalInterval = 2 * time.Second
	defaultActiveInterval = 100 * time.Millisecond
	// Output within this window counts as recent screen activity.
	activeWindow = 500 * time.Millisecond
)

// Indicator is a terminal surface that keeps the compact frame on the last
// line of the screen.
type Indicator struct {
	mu      sync.Mutex
	level   activity.Level
	drawn   bool
	enabled bool
	writer  io.Writer
	// rows is the height of the scroll region above the status line, 0 if unknown
	rows int

	// Screen activity tracking for dynamic refresh
	lastActivity   time.Time
	refreshChan    chan struct{}
	normalInterval time.Duration
	activeInterval time.Duration
}

// NewIndicator creates a new status indicator
func NewIndicator(writer io.Writer, enabled bool) *Indicator {
	return &Indicator{
		level:          activity.Idle,
		writer:         writer,
		enabled:        enabled,
		refreshChan:    make(chan struct{}, 1),
		normalInterval: defaultNormalInterval,
		activeInterval: defaultActiveInterval,
	}
}

// Ensure Indicator implements Surface and ScreenEventHandler
var (
	_ surface.Surface               = (*Indicator)(nil)
	_ interfaces.ScreenEventHandler = (*Indicator)(nil)
)

// Render implements surface.Surface. A nil indicator renders nothing.
func (i *Indicator) Render(level activity.Level) error {
	if i == nil {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	i.level = level
	i.drawn = true
	return i.draw()
}

// Level returns the last rendered level.
func (i *Indicator) Level() activity.Level {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.level
}

// SetRefreshIntervals overrides the auto refresh cadence.
func (i *Indicator) SetRefreshIntervals(normal, active time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.normalInterval = normal
	i.activeInterval = active
}

// SetScrollRegion confines scrolling to the top rows lines so the child
// never writes on the status line, then redraws.
func (i *Indicator) SetScrollRegion(rows int) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.rows = rows
	if !i.enabled || i.writer == nil || rows < 1 {
		return
	}
	// DECSTBM homes the cursor, so wrap it in save/restore
	_, _ = fmt.Fprintf(i.writer, "\0337\033[1;%dr\0338", rows)
	_ = i.draw()
}

// draw renders the status line. Caller must hold i.mu.
func (i *Indicator) draw() error {
	if !i.enabled || i.writer == nil || !i.drawn {
		return nil
	}

	// DEC save/restore cursor (\0337/\0338) is more widely supported than
	// \033[s/\033[u. The sequence:
	// \0337 - DECSC: Save cursor position and attributes
	// \033[1;Nr - Scroll region above the status line (reapplied after resets)
	// \033[999;1H - Move to line 999, column 1 (clamped to the last line)
	// \033[2K - Clear entire line
	// %s - The frame
	// \0338 - DECRC: Restore cursor position and attributes
	region := ""
	if i.rows > 0 {
		region = fmt.Sprintf("\033[1;%dr", i.rows)
	}
	sequence := fmt.Sprintf("\0337%s\033[999;1H\033[2K%s\0338", region, frames.ANSI(i.level))

	if _, err := fmt.Fprint(i.writer, sequence); err != nil {
		return err
	}

	return nil
}

// Clear removes the status line and gives the full screen back
func (i *Indicator) Clear() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.enabled || i.writer == nil {
		return nil
	}

	sequence := "\0337\033[999;1H\033[2K\0338"
	if i.rows > 0 {
		sequence = "\0337\033[r\033[999;1H\033[2K\0338"
	}
	if _, err := fmt.Fprint(i.writer, sequence); err != nil {
		return err
	}

	return nil
}

// StartAutoRefresh starts a goroutine that redraws periodically, faster while
// the wrapped program is busy repainting the screen.
func (i *Indicator) StartAutoRefresh(stopChan <-chan struct{}) {
	i.mu.Lock()
	normalInterval := i.normalInterval
	activeInterval := i.activeInterval
	i.mu.Unlock()

	go func() {
		ticker := time.NewTicker(normalInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				i.mu.Lock()
				isActive := time.Since(i.lastActivity) < activeWindow
				_ = i.draw() // Best effort
				i.mu.Unlock()

				if isActive {
					ticker.Reset(activeInterval)
				} else {
					ticker.Reset(normalInterval)
				}
			case <-i.refreshChan:
				i.mu.Lock()
				_ = i.draw()
				i.mu.Unlock()
			case <-stopChan:
				_ = i.Clear() // Best effort
				return
			}
		}
	}()
}

// HandleScreenClear implements interfaces.ScreenEventHandler
// It redraws the status line when the screen is cleared
func (i *Indicator) HandleScreenClear() {
	i.mu.Lock()
	i.lastActivity = time.Now()
	i.mu.Unlock()

	if i.enabled {
		select {
		case i.refreshChan <- struct{}{}:
		default:
			// Refresh already pending
		}
	}
}
