package sim

import (
	"io"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestParseCommand(t *testing.T) {
	tests := map[byte]Command{
		'n': Next, 'N': Next,
		'p': Previous, 'P': Previous,
		'q': Quit, 'Q': Quit,
		'x': None, '\n': None, ' ': None,
	}
	for key, want := range tests {
		if got := ParseCommand(key); got != want {
			t.Errorf("ParseCommand(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestParseCommandName(t *testing.T) {
	tests := map[string]Command{
		"next":     Next,
		"prev":     Previous,
		"previous": Previous,
		"quit":     Quit,
		"Q":        Quit,
		"jump":     None,
		"":         None,
	}
	for name, want := range tests {
		if got := ParseCommandName(name); got != want {
			t.Errorf("ParseCommandName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestChannelSource(t *testing.T) {
	source := NewChannelSource(1)

	if got := source.TryCommand(); got != None {
		t.Errorf("Expected no command from empty queue, got %v", got)
	}
	if !source.Send(Next) {
		t.Error("Expected Send to succeed")
	}
	if source.Send(Quit) {
		t.Error("Expected Send to fail on a full queue")
	}
	if got := source.TryCommand(); got != Next {
		t.Errorf("Expected Next, got %v", got)
	}
	if got := source.TryCommand(); got != None {
		t.Errorf("Expected drained queue, got %v", got)
	}
}

func TestReaderSource(t *testing.T) {
	source := NewReaderSource(strings.NewReader("xnPq"))

	var got []Command
	waitFor(t, time.Second, func() bool {
		if cmd := source.TryCommand(); cmd != None {
			got = append(got, cmd)
		}
		return len(got) == 3
	})
	if want := []Command{Next, Previous, Quit}; !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestReaderSourceStopsOnError(t *testing.T) {
	r, w := io.Pipe()
	source := NewReaderSource(r)

	w.Write([]byte("n"))
	waitFor(t, time.Second, func() bool {
		return source.TryCommand() == Next
	})

	w.Close()
	if got := source.TryCommand(); got != None {
		t.Errorf("Expected None after reader closed, got %v", got)
	}
}

func TestMerge(t *testing.T) {
	first := NewChannelSource(4)
	second := NewChannelSource(4)
	merged := Merge(first, nil, second)

	if got := merged.TryCommand(); got != None {
		t.Errorf("Expected None from empty sources, got %v", got)
	}

	second.Send(Quit)
	first.Send(Next)
	for _, want := range []Command{Next, Quit, None} {
		if got := merged.TryCommand(); got != want {
			t.Errorf("Expected %v, got %v", want, got)
		}
	}
}

func TestCommandString(t *testing.T) {
	tests := map[Command]string{
		Next:     "next",
		Previous: "previous",
		Quit:     "quit",
		None:     "none",
	}
	for cmd, want := range tests {
		if got := cmd.String(); got != want {
			t.Errorf("String() = %s, want %s", got, want)
		}
	}
}
