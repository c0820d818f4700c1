package main

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	flag "github.com/spf13/pflag"

	"github.com/Veraticus/keycat/pkg/activity"
	"github.com/Veraticus/keycat/pkg/config"
	"github.com/Veraticus/keycat/pkg/surface"
)

// syncBuffer is a bytes.Buffer safe for the indicator's refresh goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewDependencies(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*config.Config)
		opts         Options
		wantSurfaces int
		wantProcess  bool
		wantStatus   bool
	}{
		{
			name:         "not a terminal",
			opts:         Options{StatusWriter: &syncBuffer{}},
			wantSurfaces: 0,
			wantProcess:  true,
		},
		{
			name:         "terminal",
			opts:         Options{StatusWriter: &syncBuffer{}, Terminal: true},
			wantSurfaces: 1,
			wantProcess:  true,
			wantStatus:   true,
		},
		{
			name:         "quiet terminal",
			mutate:       func(c *config.Config) { c.Quiet = true },
			opts:         Options{StatusWriter: &syncBuffer{}, Terminal: true},
			wantSurfaces: 0,
			wantProcess:  true,
		},
		{
			name:         "status line disabled",
			mutate:       func(c *config.Config) { c.StatusLine = false },
			opts:         Options{StatusWriter: &syncBuffer{}, Terminal: true},
			wantSurfaces: 0,
			wantProcess:  true,
		},
		{
			name:         "terminal with trace",
			opts:         Options{StatusWriter: &syncBuffer{}, Terminal: true, Trace: &syncBuffer{}},
			wantSurfaces: 2,
			wantProcess:  true,
			wantStatus:   true,
		},
		{
			name:         "preview",
			opts:         Options{Preview: true, StatusWriter: &syncBuffer{}, Terminal: true},
			wantSurfaces: 0,
			wantProcess:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			deps, err := NewDependencies(cfg, tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer deps.Close()

			if deps.Config != cfg {
				t.Error("expected config to be set")
			}
			if deps.Widget == nil {
				t.Fatal("expected widget to be created")
			}
			if got := deps.Widget.Surfaces(); got != tt.wantSurfaces {
				t.Errorf("expected %d surfaces, got %d", tt.wantSurfaces, got)
			}
			if (deps.ProcessManager != nil) != tt.wantProcess {
				t.Errorf("expected process manager: %v, got %v", tt.wantProcess, deps.ProcessManager != nil)
			}
			if tt.wantProcess && (deps.InputMonitor == nil || deps.OutputMonitor == nil) {
				t.Error("expected input and output monitors to be created")
			}
			if tt.wantStatus {
				out := tt.opts.StatusWriter.(*syncBuffer).String()
				if !strings.Contains(out, "zzz") {
					t.Errorf("expected initial idle draw on the status line, got %q", out)
				}
			}
		})
	}
}

func TestNewDependenciesCapacityExceeded(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxSurfaces = 1

	_, err := NewDependencies(cfg, Options{
		StatusWriter: &syncBuffer{},
		Terminal:     true,
		Trace:        &syncBuffer{},
	})
	if !errors.Is(err, surface.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestInputDrivesTrace(t *testing.T) {
	trace := &syncBuffer{}
	deps, err := NewDependencies(config.DefaultConfig(), Options{StatusWriter: &syncBuffer{}, Trace: trace})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer deps.Close()

	app := NewApplication(deps)
	if got := app.LastPress(); got != "never" {
		t.Errorf("expected no press yet, got %q", got)
	}

	deps.InputMonitor.HandleData([]byte("hi"))

	if deps.Widget.Level() != activity.Bursting {
		t.Errorf("expected bursting after typing, got %v", deps.Widget.Level())
	}
	if app.Presses() != 2 {
		t.Errorf("expected 2 presses, got %d", app.Presses())
	}
	if !strings.HasSuffix(app.LastPress(), " ago") {
		t.Errorf("unexpected last press %q", app.LastPress())
	}

	want := "keycat: level=idle frame=0\nkeycat: level=bursting frame=2\n"
	if trace.String() != want {
		t.Errorf("trace = %q, want %q", trace.String(), want)
	}
}

func TestDependenciesClose(t *testing.T) {
	deps, err := NewDependencies(config.DefaultConfig(), Options{StatusWriter: &syncBuffer{}, Terminal: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Close should not panic
	deps.Close()

	// Double close should not panic
	deps.Close()
}

func TestApplicationPreviewMode(t *testing.T) {
	deps, err := NewDependencies(config.DefaultConfig(), Options{Preview: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer deps.Close()

	app := NewApplication(deps)
	if err := app.Run("true", nil); err == nil {
		t.Error("expected Run to fail without a process manager")
	}
	if err := app.Stop(); err != nil {
		t.Errorf("unexpected Stop error: %v", err)
	}
	if app.ExitCode() != 0 {
		t.Errorf("expected exit code 0, got %d", app.ExitCode())
	}
	if app.Presses() != 0 {
		t.Errorf("expected no presses, got %d", app.Presses())
	}
}

func TestApplicationExitCode(t *testing.T) {
	deps, err := NewDependencies(config.DefaultConfig(), Options{StatusWriter: &syncBuffer{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer deps.Close()

	if code := NewApplication(deps).ExitCode(); code != 0 {
		t.Errorf("expected exit code 0 before run, got %d", code)
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantOurs []string
		wantRest []string
	}{
		{
			name: "no args",
		},
		{
			name:     "command only",
			args:     []string{"vim", "main.go"},
			wantRest: []string{"vim", "main.go"},
		},
		{
			name:     "flags then command",
			args:     []string{"--quiet", "--config", "/tmp/c.yaml", "vim", "--clean"},
			wantOurs: []string{"--quiet", "--config", "/tmp/c.yaml"},
			wantRest: []string{"vim", "--clean"},
		},
		{
			name:     "equals form",
			args:     []string{"--decay=100ms", "--trace=/tmp/t", "bash"},
			wantOurs: []string{"--decay=100ms", "--trace=/tmp/t"},
			wantRest: []string{"bash"},
		},
		{
			name:     "double dash",
			args:     []string{"--preview", "--", "--quiet"},
			wantOurs: []string{"--preview"},
			wantRest: []string{"--quiet"},
		},
		{
			name:     "unknown flag starts the command",
			args:     []string{"--quiet", "-l", "--help"},
			wantOurs: []string{"--quiet"},
			wantRest: []string{"-l", "--help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ours, rest := splitArgs(tt.args)
			if strings.Join(ours, " ") != strings.Join(tt.wantOurs, " ") {
				t.Errorf("ours = %v, want %v", ours, tt.wantOurs)
			}
			if strings.Join(rest, " ") != strings.Join(tt.wantRest, " ") {
				t.Errorf("rest = %v, want %v", rest, tt.wantRest)
			}
		})
	}
}

func TestResolveCommand(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Command = "/bin/zsh"
	cfg.DefaultArgs = []string{"-l"}

	command, args := resolveCommand(cfg, nil)
	if command != "/bin/zsh" || strings.Join(args, " ") != "-l" {
		t.Errorf("expected configured command with default args, got %s %v", command, args)
	}

	command, args = resolveCommand(cfg, []string{"vim", "notes.txt"})
	if command != "vim" || strings.Join(args, " ") != "notes.txt" {
		t.Errorf("expected explicit command, got %s %v", command, args)
	}
}

func TestPrintUsage(t *testing.T) {
	fs := flag.NewFlagSet("keycat", flag.ContinueOnError)
	fs.Bool("preview", false, "Show the cat full screen")

	var buf bytes.Buffer
	printUsage(&buf, fs)

	for _, want := range []string{"Usage: keycat", "--preview", "KEYCAT_DEBUG", "config.yaml"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected usage to contain %q", want)
		}
	}
}
