// Package process runs the wrapped command under a pseudo-terminal.
package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"

	"github.com/creack/pty"

	"github.com/Veraticus/keycat/pkg/debug"
)

var errNotTerminal = errors.New("not a terminal")

// PTYManager handles PTY-based process execution
type PTYManager struct {
	cmd         *exec.Cmd
	pty         *os.File
	mu          sync.Mutex
	stopChan    chan struct{}
	wg          sync.WaitGroup
	restoreFunc func()
	reserveRows int
	onResize    func(rows int)
}

// Ensure PTYManager implements PTY
var _ PTY = (*PTYManager)(nil)

// NewPTYManager creates a new PTY manager
func NewPTYManager() *PTYManager {
	return &PTYManager{
		stopChan: make(chan struct{}),
	}
}

// Start starts a process with PTY
func (p *PTYManager) Start(command string, args []string, env []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return fmt.Errorf("process already started")
	}

	p.cmd = exec.Command(command, args...)
	p.cmd.Env = env

	var err error
	p.pty, err = pty.Start(p.cmd)
	if err != nil {
		p.cmd = nil
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	// Some environments don't have a terminal to copy the size from
	if err := p.copyTerminalSize(); err != nil {
		debug.Logf("failed to copy terminal size: %v", err)
	}

	p.wg.Add(1)
	go p.monitorTerminalSize()

	return nil
}

// GetPTY returns the PTY file descriptor
func (p *PTYManager) GetPTY() *os.File {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pty
}

// Wait waits for the process to complete. The PTY stays open so the
// remaining output can be read; call Close afterwards.
func (p *PTYManager) Wait() error {
	if p.cmd == nil {
		return fmt.Errorf("process not started")
	}

	err := p.cmd.Wait()

	close(p.stopChan)
	p.wg.Wait()

	return err
}

// Close closes the PTY master. Output still buffered in the PTY is lost, so
// callers copying output should wait for CopyIO to return first.
func (p *PTYManager) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pty == nil {
		return nil
	}
	err := p.pty.Close()
	p.pty = nil
	return err
}

// ProcessState returns the process state
func (p *PTYManager) ProcessState() *os.ProcessState {
	if p.cmd == nil {
		return nil
	}
	return p.cmd.ProcessState
}

// Process returns the underlying process
func (p *PTYManager) Process() *os.Process {
	if p.cmd == nil {
		return nil
	}
	return p.cmd.Process
}

// Stop restores the terminal state
func (p *PTYManager) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.restoreFunc != nil {
		p.restoreFunc()
		p.restoreFunc = nil
	}

	return nil
}

// ReserveRows keeps n rows at the bottom of the terminal out of the PTY.
// onResize is called with the PTY's row count whenever the size is copied.
func (p *PTYManager) ReserveRows(n int, onResize func(rows int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reserveRows = n
	p.onResize = onResize
}

// copyTerminalSize copies the terminal size from stdin to the PTY, minus the
// reserved rows. Caller must hold p.mu.
func (p *PTYManager) copyTerminalSize() error {
	size, err := pty.GetsizeFull(os.Stdin)
	if err != nil {
		return err
	}
	size.Rows = usableRows(size.Rows, p.reserveRows)

	if err := pty.Setsize(p.pty, size); err != nil {
		return err
	}
	if p.reserveRows > 0 && p.onResize != nil {
		p.onResize(int(size.Rows))
	}
	return nil
}

// usableRows returns the rows left for the child. A terminal too small to
// spare the reserved rows keeps all of them.
func usableRows(rows uint16, reserve int) uint16 {
	if reserve <= 0 || int(rows) <= reserve {
		return rows
	}
	return rows - uint16(reserve)
}

// monitorTerminalSize monitors for terminal size changes
func (p *PTYManager) monitorTerminalSize() {
	defer p.wg.Done()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGWINCH)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			p.mu.Lock()
			if p.pty != nil {
				if err := p.copyTerminalSize(); err != nil {
					debug.Logf("failed to resize PTY: %v", err)
				}
			}
			p.mu.Unlock()
		case <-p.stopChan:
			return
		}
	}
}

// CopyIO copies stdin to the PTY and the PTY to stdout, handing every chunk
// to the matching handler. It returns once the PTY output is exhausted; the
// stdin copy may still be blocked in a read at that point.
func (p *PTYManager) CopyIO(stdin io.Reader, stdout io.Writer, inputHandler, outputHandler func([]byte)) error {
	p.mu.Lock()
	if p.pty == nil {
		p.mu.Unlock()
		return fmt.Errorf("PTY not initialized")
	}
	ptyFile := p.pty
	p.mu.Unlock()

	// Store the restore function so we can call it from Stop()
	if file, ok := stdin.(*os.File); ok {
		if restore, err := setRawMode(int(file.Fd())); err == nil {
			p.mu.Lock()
			p.restoreFunc = restore
			p.mu.Unlock()
			defer func() {
				_ = p.Stop()
			}()
		} else {
			debug.Logf("stdin stays in cooked mode: %v", err)
		}
	}

	errChan := make(chan error, 2)

	go func() {
		reader := &handlerReader{reader: stdin, handler: inputHandler}
		if _, err := io.Copy(ptyFile, reader); err != nil {
			errChan <- fmt.Errorf("stdin copy error: %w", err)
		}
	}()

	reader := &handlerReader{reader: ptyFile, handler: outputHandler}
	if _, err := io.Copy(stdout, reader); err != nil && !isPTYClosed(err) {
		return fmt.Errorf("stdout copy error: %w", err)
	}

	select {
	case err := <-errChan:
		return err
	default:
		return nil
	}
}

// isPTYClosed reports the error Linux returns from reading a PTY whose
// child has exited.
func isPTYClosed(err error) bool {
	return errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed)
}

// handlerReader wraps a reader and calls a handler for each chunk of data
type handlerReader struct {
	reader  io.Reader
	handler func([]byte)
}

func (r *handlerReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 && r.handler != nil {
		r.handler(p[:n])
	}
	return n, err
}
