package sim

import "io"

// Command is an operator request to the simulation set
type Command int

const (
	None Command = iota
	Next
	Previous
	Quit
)

func (c Command) String() string {
	switch c {
	case Next:
		return "next"
	case Previous:
		return "previous"
	case Quit:
		return "quit"
	default:
		return "none"
	}
}

// ParseCommand maps a key press to a command. Keys are case-insensitive:
// n is next, p is previous and q is quit. Anything else is None.
func ParseCommand(key byte) Command {
	switch key {
	case 'n', 'N':
		return Next
	case 'p', 'P':
		return Previous
	case 'q', 'Q':
		return Quit
	default:
		return None
	}
}

// ParseCommandName maps a command name or key to a command
func ParseCommandName(name string) Command {
	switch name {
	case "next":
		return Next
	case "previous", "prev":
		return Previous
	case "quit":
		return Quit
	}
	if len(name) == 1 {
		return ParseCommand(name[0])
	}
	return None
}

// CommandSource is polled by the simulation set for operator commands.
// TryCommand must not block; it returns None when nothing is pending.
type CommandSource interface {
	TryCommand() Command
}

// ChannelSource is a buffered queue of commands
type ChannelSource struct {
	commands chan Command
}

// NewChannelSource creates a command queue holding up to size pending commands
func NewChannelSource(size int) *ChannelSource {
	return &ChannelSource{commands: make(chan Command, size)}
}

// Send queues a command. It returns false if the queue is full.
func (c *ChannelSource) Send(cmd Command) bool {
	select {
	case c.commands <- cmd:
		return true
	default:
		return false
	}
}

func (c *ChannelSource) TryCommand() Command {
	select {
	case cmd := <-c.commands:
		return cmd
	default:
		return None
	}
}

// NewReaderSource reads key presses from r in a background goroutine and
// queues the ones that map to a command. The goroutine exits when r returns
// an error.
func NewReaderSource(r io.Reader) *ChannelSource {
	source := NewChannelSource(16)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				if cmd := ParseCommand(buf[0]); cmd != None {
					source.Send(cmd)
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return source
}

type multiSource []CommandSource

// Merge polls sources in order and returns the first pending command
func Merge(sources ...CommandSource) CommandSource {
	return multiSource(sources)
}

func (m multiSource) TryCommand() Command {
	for _, source := range m {
		if source == nil {
			continue
		}
		if cmd := source.TryCommand(); cmd != None {
			return cmd
		}
	}
	return None
}

type noInput struct{}

func (noInput) TryCommand() Command { return None }
