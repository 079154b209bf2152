// Package inputtest provides a deterministic input source that replays a
// scripted sequence of keyboard and mouse events.
package inputtest

import "github.com/Guliveer/lafms/internal/input"

// Source is an input.Source whose events come from Play.
type Source struct {
	*input.Hub
}

// NewSource creates an empty scripted source.
func NewSource() *Source {
	return &Source{Hub: input.NewHub()}
}

// Play delivers events in order, synchronously.
func (s *Source) Play(events ...input.Event) {
	for _, ev := range events {
		s.Dispatch(ev)
	}
}

// Down is a key-down event for name.
func Down(name string) input.Event {
	return input.Event{Kind: input.KeyDown, Name: name}
}

// Up is a key-up event for name.
func Up(name string) input.Event {
	return input.Event{Kind: input.KeyUp, Name: name}
}

// Press is the key-down/key-up pairs for a chord: every key goes down in
// order, then every key comes up in the same order.
func Press(names ...string) []input.Event {
	events := make([]input.Event, 0, 2*len(names))
	for _, n := range names {
		events = append(events, Down(n))
	}
	for _, n := range names {
		events = append(events, Up(n))
	}
	return events
}

// Click is a left mouse button press.
func Click() input.Event {
	return input.Event{Kind: input.MouseDown, Button: 1}
}

// DoubleClick is a left mouse button double click.
func DoubleClick() input.Event {
	return input.Event{Kind: input.MouseDouble, Button: 1}
}
