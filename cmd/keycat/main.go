package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/Veraticus/keycat/pkg/config"
	"github.com/Veraticus/keycat/pkg/debug"
	"github.com/Veraticus/keycat/pkg/surface"
)

// valueFlags take an argument; boolFlags do not. Anything else belongs to
// the wrapped command.
var (
	valueFlags = map[string]bool{"config": true, "decay": true, "trace": true}
	boolFlags  = map[string]bool{"quiet": true, "preview": true, "help": true}
)

// splitArgs separates our flags from the wrapped command's arguments. Our
// flags are only recognized before the first argument that is not ours.
func splitArgs(args []string) (ours, rest []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return ours, args[i+1:]
		}
		if !strings.HasPrefix(arg, "-") {
			return ours, args[i:]
		}

		name := strings.TrimLeft(arg, "-")
		hasValue := false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, hasValue = name[:eq], true
		}

		switch {
		case boolFlags[name]:
			ours = append(ours, arg)
		case valueFlags[name]:
			ours = append(ours, arg)
			if !hasValue && i+1 < len(args) {
				ours = append(ours, args[i+1])
				i++
			}
		default:
			return ours, args[i:]
		}
	}
	return ours, nil
}

func main() {
	var (
		configPath string
		tracePath  string
		quiet      bool
		showPrev   bool
		help       bool
	)

	ourArgs, commandArgs := splitArgs(os.Args[1:])

	fs := flag.NewFlagSet("keycat", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "Path to config file")
	fs.BoolVar(&quiet, "quiet", false, "Hide the status line")
	fs.BoolVar(&showPrev, "preview", false, "Show the cat full screen instead of wrapping a command")
	decay := fs.Duration("decay", 0, "Re-evaluate the cat on this interval (0 disables)")
	fs.StringVar(&tracePath, "trace", "", "Append level transitions to this file")
	fs.BoolVar(&help, "help", false, "Show help message")

	if err := fs.Parse(ourArgs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if help {
		printUsage(os.Stdout, fs)
		os.Exit(0)
	}

	// Load configuration
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Override config with command line flags
	if quiet {
		cfg.Quiet = true
	}
	if fs.Changed("decay") {
		cfg.DecayInterval = *decay
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	opts := Options{
		Preview:      showPrev,
		StatusWriter: os.Stderr,
		Terminal:     term.IsTerminal(int(os.Stderr.Fd())),
	}

	if tracePath != "" {
		// #nosec G304 - The trace path is supplied by the user on the command line
		f, err := os.OpenFile(tracePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening trace file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		opts.Trace = f
	}

	// Create dependencies
	deps, err := NewDependencies(cfg, opts)
	if err != nil {
		if errors.Is(err, surface.ErrCapacityExceeded) {
			fmt.Fprintf(os.Stderr, "Error: %v (raise max_surfaces)\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error creating dependencies: %v\n", err)
		}
		os.Exit(1)
	}
	defer deps.Close()

	app := NewApplication(deps)

	if showPrev {
		if err := app.RunPreview(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	command, args := resolveCommand(cfg, commandArgs)

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Ensure terminal restoration on panic
	defer func() {
		if r := recover(); r != nil {
			_ = app.Stop() // Best effort terminal restoration
			panic(r)       // Re-panic
		}
	}()

	go func() {
		<-sigChan
		if err := app.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error stopping process: %v\n", err)
		}
		// Exit with standard interrupt code
		os.Exit(130)
	}()

	debug.Logf("starting %s with args: %v", command, args)
	debug.Logf("config: quiet=%v redraw=%s decay=%v surfaces=%d",
		cfg.Quiet, cfg.Policy(), cfg.DecayInterval, deps.Widget.Surfaces())

	runErr := app.Run(command, args)
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error running %s: %v\n", command, runErr)
		}
	}

	debug.Logf("session ended: %d presses, last press %s, %d bytes of output",
		app.Presses(), app.LastPress(), deps.OutputMonitor.BytesSeen())

	code := app.ExitCode()
	if runErr != nil && code == 0 {
		code = 1
	}
	deps.Close()
	os.Exit(code)
}

// resolveCommand picks the command to wrap. An explicit command on the
// command line runs as given; otherwise the configured command (or $SHELL)
// runs with the configured default args.
func resolveCommand(cfg *config.Config, commandArgs []string) (string, []string) {
	if len(commandArgs) > 0 {
		return commandArgs[0], commandArgs[1:]
	}
	return cfg.ResolveCommand(), append([]string{}, cfg.DefaultArgs...)
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "keycat - a bongo cat that types along with you")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: keycat [OPTIONS] [COMMAND [ARGS...]]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Without a command keycat wraps $SHELL.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment Variables:")
	fmt.Fprintln(w, "  KEYCAT_BURST_THRESHOLD    Bursting below this gap (default: 1s)")
	fmt.Fprintln(w, "  KEYCAT_TYPING_THRESHOLD   Typing below this gap (default: 5s)")
	fmt.Fprintln(w, "  KEYCAT_MAX_SURFACES       Surface slots (default: 4)")
	fmt.Fprintln(w, "  KEYCAT_REDRAW             on_change or always (default: on_change)")
	fmt.Fprintln(w, "  KEYCAT_DECAY_INTERVAL     Re-evaluation interval (default: 0, off)")
	fmt.Fprintln(w, "  KEYCAT_STATUS_LINE        Draw the status line (default: true)")
	fmt.Fprintln(w, "  KEYCAT_QUIET              Hide the status line (true/false)")
	fmt.Fprintln(w, "  KEYCAT_COMMAND            Command to wrap")
	fmt.Fprintln(w, "  KEYCAT_DEFAULT_ARGS       Default args (comma-separated)")
	fmt.Fprintln(w, "  KEYCAT_CONFIG             Path to config file")
	fmt.Fprintln(w, "  KEYCAT_DEBUG              Debug logging to stderr (1/true)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration file: ~/.config/keycat/config.yaml")
}
