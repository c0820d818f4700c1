package process

import (
	"io"
	"os"
)

// PTY defines the interface for PTY operations
type PTY interface {
	Start(command string, args []string, env []string) error
	Wait() error
	Close() error
	Stop() error
	ProcessState() *os.ProcessState
	Process() *os.Process
	GetPTY() *os.File
	ReserveRows(n int, onResize func(rows int))
	CopyIO(stdin io.Reader, stdout io.Writer, inputHandler, outputHandler func([]byte)) error
}
