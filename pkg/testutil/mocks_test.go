package testutil

import (
	"errors"
	"sync"
	"testing"

	"github.com/Veraticus/keycat/pkg/activity"
	"github.com/Veraticus/keycat/pkg/types"
)

func TestFakeClock(t *testing.T) {
	clock := NewFakeClock(100)
	if clock.Now() != 100 {
		t.Errorf("Now() = %d, want 100", clock.Now())
	}

	clock.Advance(250)
	if clock.Now() != 350 {
		t.Errorf("Now() after Advance = %d, want 350", clock.Now())
	}

	clock.Set(10)
	if clock.Now() != 10 {
		t.Errorf("Now() after Set = %d, want 10", clock.Now())
	}
}

func TestMockSurface(t *testing.T) {
	t.Run("successful render", func(t *testing.T) {
		mock := NewMockSurface()

		if err := mock.Render(activity.Typing); err != nil {
			t.Errorf("Render() error = %v, want nil", err)
		}

		renders := mock.GetRenders()
		if len(renders) != 1 || renders[0] != activity.Typing {
			t.Errorf("GetRenders() = %v, want [typing]", renders)
		}

		last, ok := mock.LastRender()
		if !ok || last != activity.Typing {
			t.Errorf("LastRender() = %v, %v", last, ok)
		}
	})

	t.Run("render with error", func(t *testing.T) {
		mock := NewMockSurface()
		mockErr := errors.New("test error")
		mock.SetError(mockErr)

		if err := mock.Render(activity.Idle); err != mockErr {
			t.Errorf("Render() error = %v, want %v", err, mockErr)
		}
		if len(mock.GetRenders()) != 0 {
			t.Error("failed render should not be recorded")
		}
		if mock.GetAttempts() != 1 {
			t.Errorf("GetAttempts() = %d, want 1", mock.GetAttempts())
		}
	})

	t.Run("clear state", func(t *testing.T) {
		mock := NewMockSurface()
		_ = mock.Render(activity.Bursting)
		mock.SetError(errors.New("error"))

		mock.Clear()

		if len(mock.GetRenders()) != 0 || mock.GetAttempts() != 0 {
			t.Error("Clear() should reset renders and attempts")
		}
		if err := mock.Render(activity.Idle); err != nil {
			t.Errorf("Clear() should reset error, got %v", err)
		}
	})

	t.Run("concurrent renders", func(t *testing.T) {
		mock := NewMockSurface()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = mock.Render(activity.Typing)
			}()
		}
		wg.Wait()

		if len(mock.GetRenders()) != 20 {
			t.Errorf("expected 20 renders, got %d", len(mock.GetRenders()))
		}
	})
}

func TestMockKeyEventSink(t *testing.T) {
	sink := NewMockKeyEventSink()
	sink.HandleEvent(types.Press(97))
	sink.HandleEvent(types.Release(97))
	sink.HandleEvent(types.Press(98))

	if len(sink.GetEvents()) != 3 {
		t.Errorf("GetEvents() returned %d, want 3", len(sink.GetEvents()))
	}
	presses := sink.GetPresses()
	if len(presses) != 2 || presses[1].Position != 98 {
		t.Errorf("GetPresses() = %v", presses)
	}
}

func TestMockDataHandler(t *testing.T) {
	handler := NewMockDataHandler()
	buf := []byte("abc")
	handler.HandleData(buf)
	buf[0] = 'z'
	handler.HandleData([]byte("def"))

	if string(handler.GetData()) != "abcdef" {
		t.Errorf("GetData() = %q, want %q", handler.GetData(), "abcdef")
	}
	if handler.GetCallCount() != 2 {
		t.Errorf("GetCallCount() = %d, want 2", handler.GetCallCount())
	}
}
