//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package sim

import (
	"os"

	"golang.org/x/term"
)

// Keyboard reads key presses from a terminal. On this platform the terminal
// stays line buffered, so commands take effect after enter.
type Keyboard struct {
	*ChannelSource
}

func OpenKeyboard(f *os.File) (*Keyboard, error) {
	if !term.IsTerminal(int(f.Fd())) {
		return nil, ErrNotTerminal
	}
	return &Keyboard{ChannelSource: NewReaderSource(f)}, nil
}

func (k *Keyboard) Close() error {
	return nil
}
