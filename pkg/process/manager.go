package process

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Veraticus/keycat/pkg/debug"
	"github.com/Veraticus/keycat/pkg/interfaces"
)

// WrappedEnv is set in the child environment to refuse nested wrapping.
const WrappedEnv = "KEYCAT_WRAPPED"

// drainTimeout bounds how long Wait waits for the output copy after the
// child exits. A background job still holding the PTY keeps it from ending.
var drainTimeout = 2 * time.Second

// Manager manages the wrapped process
type Manager struct {
	ptyManager    PTY
	inputHandler  interfaces.DataHandler
	outputHandler interfaces.DataHandler
	stdin         io.Reader
	stdout        io.Writer
	exitCode      int
	started       bool
	mu            sync.Mutex
	sigChan       chan os.Signal
	done          chan struct{}
	ioDone        chan struct{}
}

// NewManager creates a new process manager. inputHandler sees every chunk
// the user types; outputHandler sees every chunk the child prints.
func NewManager(inputHandler, outputHandler interfaces.DataHandler) *Manager {
	return &Manager{
		ptyManager:    NewPTYManager(),
		inputHandler:  inputHandler,
		outputHandler: outputHandler,
		stdin:         os.Stdin,
		stdout:        os.Stdout,
		done:          make(chan struct{}),
		ioDone:        make(chan struct{}),
	}
}

// ReserveStatusLine keeps the bottom terminal row out of the child's PTY.
// onResize receives the child's row count at start and on every resize.
// It must be called before Start.
func (m *Manager) ReserveStatusLine(onResize func(rows int)) {
	m.ptyManager.ReserveRows(1, onResize)
}

// Start starts the process
func (m *Manager) Start(command string, args []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if os.Getenv(WrappedEnv) == "1" {
		return fmt.Errorf("already wrapped by keycat")
	}

	env := append(os.Environ(), WrappedEnv+"=1")

	if err := m.ptyManager.Start(command, args, env); err != nil {
		return fmt.Errorf("failed to start process: %w", err)
	}

	m.started = true
	go func() {
		defer close(m.ioDone)
		if err := m.ptyManager.CopyIO(m.stdin, m.stdout, handlerFunc(m.inputHandler), handlerFunc(m.outputHandler)); err != nil {
			debug.Logf("I/O error: %v", err)
		}
	}()

	m.setupSignalForwarding()

	return nil
}

// handlerFunc adapts an optional DataHandler to a callback
func handlerFunc(h interfaces.DataHandler) func([]byte) {
	if h == nil {
		return nil
	}
	return h.HandleData
}

// Wait waits for the process to exit
func (m *Manager) Wait() error {
	if m.ptyManager == nil {
		return fmt.Errorf("process not started")
	}

	err := m.ptyManager.Wait()

	m.mu.Lock()
	if state := m.ptyManager.ProcessState(); state != nil {
		m.exitCode = state.ExitCode()
	}
	started := m.started
	m.mu.Unlock()

	// The PTY still holds output the child wrote before exiting
	if started {
		select {
		case <-m.ioDone:
		case <-time.After(drainTimeout):
			debug.Logf("output still open %v after exit, closing PTY", drainTimeout)
		}
	}
	_ = m.ptyManager.Close()

	// Ensure terminal is restored
	_ = m.ptyManager.Stop()

	close(m.done)
	m.cleanupSignals()

	return err
}

// ExitCode returns the exit code of the process
func (m *Manager) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exitCode
}

// setupSignalForwarding sets up signal forwarding to the child process
func (m *Manager) setupSignalForwarding() {
	m.sigChan = make(chan os.Signal, 1)
	signal.Notify(m.sigChan,
		syscall.SIGHUP,
		syscall.SIGQUIT,
		syscall.SIGUSR1,
		syscall.SIGUSR2,
	)

	go m.forwardSignals()
}

// forwardSignals forwards signals to the child process
func (m *Manager) forwardSignals() {
	for {
		select {
		case sig, ok := <-m.sigChan:
			if !ok {
				return
			}
			if m.ptyManager != nil && m.ptyManager.Process() != nil {
				if err := m.ptyManager.Process().Signal(sig); err != nil && err != os.ErrProcessDone {
					debug.Logf("signal forward error: %v", err)
				}
			}
		case <-m.done:
			return
		}
	}
}

// cleanupSignals stops signal forwarding
func (m *Manager) cleanupSignals() {
	if m.sigChan != nil {
		signal.Stop(m.sigChan)
	}
}

// Stop gracefully stops the manager and cleans up resources
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptyManager != nil {
		_ = m.ptyManager.Stop()

		if m.ptyManager.Process() != nil {
			// SIGTERM first, force kill if that fails
			if err := m.ptyManager.Process().Signal(syscall.SIGTERM); err != nil {
				if err != os.ErrProcessDone {
					return m.ptyManager.Process().Kill()
				}
			}
		}
	}

	return nil
}
