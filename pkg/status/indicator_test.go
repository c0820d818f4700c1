package status

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/keycat/pkg/activity"
	"github.com/Veraticus/keycat/pkg/frames"
)

func TestNewIndicator(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := NewIndicator(buf, true)

	if indicator.Level() != activity.Idle {
		t.Errorf("expected initial level Idle, got %v", indicator.Level())
	}
	if indicator.writer != buf {
		t.Errorf("expected writer to be set")
	}
	if !indicator.enabled {
		t.Errorf("expected indicator to be enabled")
	}
	if buf.Len() != 0 {
		t.Errorf("indicator should not draw before the first render, got %q", buf.String())
	}
}

func TestIndicatorRender(t *testing.T) {
	tests := []struct {
		name    string
		level   activity.Level
		enabled bool
	}{
		{name: "idle", level: activity.Idle, enabled: true},
		{name: "typing", level: activity.Typing, enabled: true},
		{name: "bursting", level: activity.Bursting, enabled: true},
		{name: "disabled indicator shows nothing", level: activity.Bursting, enabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			indicator := NewIndicator(buf, tt.enabled)

			if err := indicator.Render(tt.level); err != nil {
				t.Fatalf("Render() unexpected error: %v", err)
			}

			output := buf.String()
			if !tt.enabled {
				if output != "" {
					t.Errorf("expected no output for disabled indicator, got %q", output)
				}
				return
			}

			if !strings.Contains(output, frames.Compact(tt.level)) {
				t.Errorf("expected output to contain %q, got %q", frames.Compact(tt.level), output)
			}
			if !strings.HasPrefix(output, "\0337") || !strings.HasSuffix(output, "\0338") {
				t.Errorf("expected DEC save/restore around frame, got %q", output)
			}
			if indicator.Level() != tt.level {
				t.Errorf("Level() = %v, want %v", indicator.Level(), tt.level)
			}
		})
	}
}

func TestIndicatorRenderWriteError(t *testing.T) {
	writeErr := errors.New("broken pipe")
	indicator := NewIndicator(writerFunc(func([]byte) (int, error) { return 0, writeErr }), true)

	if err := indicator.Render(activity.Typing); !errors.Is(err, writeErr) {
		t.Errorf("Render() error = %v, want %v", err, writeErr)
	}
}

func TestIndicatorClear(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := NewIndicator(buf, true)
	_ = indicator.Render(activity.Typing)

	buf.Reset()
	if err := indicator.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, frames.Compact(activity.Typing)) {
		t.Errorf("expected cleared output to not contain the frame, got %q", output)
	}
	if !strings.Contains(output, "\033[2K") {
		t.Errorf("expected line clear sequence in output, got %q", output)
	}
}

func TestIndicatorClearDisabled(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := NewIndicator(buf, false)

	if err := indicator.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("disabled indicator wrote %q", buf.String())
	}
}

// safeBuffer is a bytes.Buffer guarded for use from the refresh goroutine
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (sb *safeBuffer) Write(p []byte) (int, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.buf.Write(p)
}

func (sb *safeBuffer) String() string {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.buf.String()
}

func TestIndicatorAutoRefresh(t *testing.T) {
	sb := &safeBuffer{}
	indicator := NewIndicator(sb, true)
	indicator.SetRefreshIntervals(20*time.Millisecond, 5*time.Millisecond)

	_ = indicator.Render(activity.Bursting)

	stopChan := make(chan struct{})
	indicator.StartAutoRefresh(stopChan)

	time.Sleep(150 * time.Millisecond)
	close(stopChan)
	time.Sleep(50 * time.Millisecond)

	output := sb.String()
	// Initial draw plus at least one refresh
	if count := strings.Count(output, frames.Compact(activity.Bursting)); count < 2 {
		t.Errorf("expected at least 2 draws, got %d", count)
	}
}

func TestIndicatorHandleScreenClear(t *testing.T) {
	sb := &safeBuffer{}
	indicator := NewIndicator(sb, true)
	// Long intervals so only the screen clear can trigger a redraw
	indicator.SetRefreshIntervals(time.Hour, time.Hour)
	_ = indicator.Render(activity.Typing)

	stopChan := make(chan struct{})
	defer close(stopChan)
	indicator.StartAutoRefresh(stopChan)

	indicator.HandleScreenClear()

	deadline := time.Now().Add(time.Second)
	for strings.Count(sb.String(), frames.Compact(activity.Typing)) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("screen clear did not trigger a redraw")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestIndicatorHandleScreenClearDisabled(t *testing.T) {
	indicator := NewIndicator(&bytes.Buffer{}, false)
	indicator.HandleScreenClear()

	select {
	case <-indicator.refreshChan:
		t.Error("disabled indicator should not queue a refresh")
	default:
	}
}

// writerFunc is an adapter to allow functions to implement io.Writer
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) {
	return f(p)
}

func TestIndicatorScrollRegion(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := NewIndicator(buf, true)
	_ = indicator.Render(activity.Typing)

	buf.Reset()
	indicator.SetScrollRegion(23)

	output := buf.String()
	if !strings.HasPrefix(output, "\0337\033[1;23r\0338") {
		t.Errorf("expected scroll region set above the status line, got %q", output)
	}
	if !strings.Contains(output, frames.Compact(activity.Typing)) {
		t.Errorf("expected redraw after setting the region, got %q", output)
	}

	buf.Reset()
	_ = indicator.Render(activity.Bursting)
	output = buf.String()
	if strings.Contains(output, "\033[r") {
		t.Errorf("draw must not reset the scroll region, got %q", output)
	}
	if !strings.Contains(output, "\033[1;23r") {
		t.Errorf("expected draw to reapply the scroll region, got %q", output)
	}

	buf.Reset()
	_ = indicator.Clear()
	if !strings.Contains(buf.String(), "\033[r") {
		t.Errorf("expected Clear to restore the full scroll region, got %q", buf.String())
	}
}

func TestIndicatorScrollRegionDisabled(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := NewIndicator(buf, false)

	indicator.SetScrollRegion(23)
	if buf.Len() != 0 {
		t.Errorf("disabled indicator should not touch the terminal, got %q", buf.String())
	}
}

func TestIndicatorDrawWithoutRegion(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := NewIndicator(buf, true)
	_ = indicator.Render(activity.Idle)

	if strings.Contains(buf.String(), "\033[r") {
		t.Errorf("draw must not reset the scroll region, got %q", buf.String())
	}
}

func TestNilIndicatorRender(t *testing.T) {
	var indicator *Indicator
	if err := indicator.Render(activity.Bursting); err != nil {
		t.Errorf("nil indicator Render() error = %v", err)
	}
}
