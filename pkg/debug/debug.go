// Package debug writes diagnostic lines to stderr when KEYCAT_DEBUG is set.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	output io.Writer = os.Stderr
)

// Enabled reports whether debug output is on.
func Enabled() bool {
	switch os.Getenv("KEYCAT_DEBUG") {
	case "1", "true", "yes":
		return true
	}
	return false
}

// Logf writes a "keycat: " prefixed line when debug output is on.
func Logf(format string, args ...any) {
	if !Enabled() {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(output, "keycat: "+format+"\n", args...)
}

// SetOutput redirects debug output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := output
	output = w
	return prev
}
