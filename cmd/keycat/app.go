package main

import (
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/keycat/pkg/config"
	"github.com/Veraticus/keycat/pkg/input"
	"github.com/Veraticus/keycat/pkg/monitor"
	"github.com/Veraticus/keycat/pkg/preview"
	"github.com/Veraticus/keycat/pkg/process"
	"github.com/Veraticus/keycat/pkg/status"
	"github.com/Veraticus/keycat/pkg/surface"
	"github.com/Veraticus/keycat/pkg/widget"
)

// Options carries the runtime choices that do not live in the config file.
type Options struct {
	// Preview shows the cat full screen instead of wrapping a command.
	Preview bool
	// StatusWriter receives the status line, normally stderr.
	StatusWriter io.Writer
	// Terminal reports whether StatusWriter is a terminal.
	Terminal bool
	// Trace, when set, receives one line per level transition.
	Trace io.Writer
}

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config          *config.Config
	Widget          *widget.Widget
	StatusIndicator *status.Indicator
	InputMonitor    *input.Monitor
	OutputMonitor   *monitor.OutputMonitor
	ProcessManager  *process.Manager
	preview         bool
	stopChan        chan struct{}
}

// NewDependencies creates all dependencies with the given configuration.
// Surface registration failures, including a full registry, are returned.
func NewDependencies(cfg *config.Config, opts Options) (*Dependencies, error) {
	w, err := widget.New(cfg.WidgetOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create widget: %w", err)
	}

	deps := &Dependencies{
		Config:   cfg,
		Widget:   w,
		preview:  opts.Preview,
		stopChan: make(chan struct{}),
	}

	if opts.Trace != nil {
		if _, err := w.Register(surface.NewWriterSurface(opts.Trace, "keycat: ")); err != nil {
			return nil, fmt.Errorf("trace surface: %w", err)
		}
	}

	// Preview mode owns the whole screen and registers its own surface
	if opts.Preview {
		return deps, nil
	}

	// The status line only makes sense on a terminal
	statusEnabled := opts.Terminal && cfg.StatusLine && !cfg.Quiet
	deps.StatusIndicator = status.NewIndicator(opts.StatusWriter, statusEnabled)
	if statusEnabled {
		if _, err := w.Register(deps.StatusIndicator); err != nil {
			return nil, fmt.Errorf("status surface: %w", err)
		}
		// Keep the cat visible despite the wrapped program clearing the screen
		deps.StatusIndicator.StartAutoRefresh(deps.stopChan)
	}

	deps.InputMonitor = input.NewMonitor(w)
	deps.OutputMonitor = monitor.NewOutputMonitor(nil)
	if statusEnabled {
		deps.OutputMonitor.SetScreenEventHandler(deps.StatusIndicator)
	}

	deps.ProcessManager = process.NewManager(deps.InputMonitor, deps.OutputMonitor)
	if statusEnabled {
		// The child gets every row but the last, which scrolls separately
		deps.ProcessManager.ReserveStatusLine(deps.StatusIndicator.SetScrollRegion)
	}

	w.StartDecay(cfg.DecayInterval, deps.stopChan)

	return deps, nil
}

// Close cleans up all dependencies
func (d *Dependencies) Close() {
	if d.stopChan != nil {
		select {
		case <-d.stopChan:
			// Already closed
		default:
			close(d.stopChan)
		}
		d.stopChan = nil
	}

	if d.StatusIndicator != nil {
		_ = d.StatusIndicator.Clear() // Best effort
	}
}

// Application represents the main application
type Application struct {
	deps *Dependencies
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps: deps,
	}
}

// Run starts the wrapped command and waits for it to exit
func (a *Application) Run(command string, args []string) error {
	if a.deps.ProcessManager == nil {
		return fmt.Errorf("no process manager in preview mode")
	}

	if err := a.deps.ProcessManager.Start(command, args); err != nil {
		return err
	}

	return a.deps.ProcessManager.Wait()
}

// RunPreview shows the cat full screen until the user quits
func (a *Application) RunPreview() error {
	return preview.Run(a.deps.Widget, a.deps.Config.DecayInterval)
}

// Stop gracefully stops the application
func (a *Application) Stop() error {
	if a.deps.ProcessManager == nil {
		return nil
	}
	return a.deps.ProcessManager.Stop()
}

// ExitCode returns the exit code of the wrapped process
func (a *Application) ExitCode() int {
	if a.deps.ProcessManager == nil {
		return 0
	}
	return a.deps.ProcessManager.ExitCode()
}

// Presses returns the number of key presses seen from the user.
func (a *Application) Presses() int {
	if a.deps.InputMonitor == nil {
		return 0
	}
	return a.deps.InputMonitor.Presses()
}

// LastPress formats how long ago the last key press happened.
func (a *Application) LastPress() string {
	last, ok := a.deps.Widget.LastActivity()
	if !ok {
		return "never"
	}
	ago := time.Duration(a.deps.Widget.Now()-last) * time.Millisecond
	return ago.Truncate(time.Millisecond).String() + " ago"
}
