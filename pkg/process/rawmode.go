package process

import "golang.org/x/term"

// setRawMode puts fd into raw mode and returns a function restoring it.
func setRawMode(fd int) (func(), error) {
	if !term.IsTerminal(fd) {
		return nil, errNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() { _ = term.Restore(fd, state) }, nil
}
