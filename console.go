package keywedge

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Console supplies one keystroke at a time plus an available-now poll
// predicate for the interactive phase.
type Console interface {
	// Poll reports whether a keystroke is available without blocking.
	Poll() bool
	// ReadKey returns the next keystroke. Callers poll first, so ReadKey
	// only blocks briefly.
	ReadKey() (byte, error)
}

// TermConsole captures single keystrokes from the controlling terminal in
// raw mode.
type TermConsole struct {
	keys    chan byte
	restore func() error
}

// OpenConsole puts stdin into raw mode and starts capturing keystrokes.
// Close must be called to restore the terminal state.
func OpenConsole() (*TermConsole, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	c := &TermConsole{
		keys:    make(chan byte, 16),
		restore: func() error { return term.Restore(fd, oldState) },
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				close(c.keys)
				return
			}
			if n > 0 {
				c.keys <- buf[0]
			}
		}
	}()

	return c, nil
}

// Poll implements Console.
func (c *TermConsole) Poll() bool {
	return len(c.keys) > 0
}

// ReadKey implements Console.
func (c *TermConsole) ReadKey() (byte, error) {
	b, ok := <-c.keys
	if !ok {
		return 0, io.EOF
	}
	return b, nil
}

// Close restores the terminal to its previous state.
func (c *TermConsole) Close() error {
	return c.restore()
}
