package hotkey

import "errors"

// Facility registers global hotkeys by chord ID. Register replaces any
// existing registration for the same ID. Callbacks must not block the
// facility; they are invoked on their own goroutine.
type Facility interface {
	Register(id string, callback func()) error
	Unregister(id string) error
}

var (
	// ErrUnknownSlot is returned for a slot that was never defined.
	ErrUnknownSlot = errors.New("unknown hotkey slot")
	// ErrEmptyChord is returned when registering an empty chord.
	ErrEmptyChord = errors.New("empty chord")
	// ErrUnsupportedChord is returned by a facility that cannot express
	// the chord, for example two non-modifier keys on an OS backend.
	ErrUnsupportedChord = errors.New("chord not supported by hotkey backend")
)
