//go:build linux || darwin || freebsd || netbsd || openbsd

package sim

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Keyboard reads single key presses from a terminal without waiting for enter
type Keyboard struct {
	*ChannelSource
	fd    int
	saved *unix.Termios
}

// OpenKeyboard switches the terminal on f to non-canonical mode with echo
// off. Output processing is left alone so printed lines still wrap normally.
// Close restores the previous settings.
func OpenKeyboard(f *os.File) (*Keyboard, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}

	saved, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("failed to read terminal settings: %w", err)
	}

	raw := *saved
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &raw); err != nil {
		return nil, fmt.Errorf("failed to set terminal settings: %w", err)
	}

	return &Keyboard{
		ChannelSource: NewReaderSource(f),
		fd:            fd,
		saved:         saved,
	}, nil
}

// Close restores the terminal settings
func (k *Keyboard) Close() error {
	return unix.IoctlSetTermios(k.fd, ioctlSetTermios, k.saved)
}
