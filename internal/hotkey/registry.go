package hotkey

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Guliveer/lafms/internal/display"
)

// SlotID names a bindable action.
type SlotID string

const (
	// SlotManual triggers a single collection.
	SlotManual SlotID = "manual"
	// SlotAutoToggle arms or stops periodic collection.
	SlotAutoToggle SlotID = "auto-toggle"
)

type slot struct {
	id       SlotID
	chord    Chord
	callback func()
}

type change struct {
	id    SlotID
	chord Chord
}

// Registry holds the hotkey slots and keeps the facility in sync with them.
// A chord is bound to at most one slot; binding it to a second slot unbinds
// it from the first.
type Registry struct {
	facility Facility
	sink     display.Sink
	logger   *zap.Logger

	mu        sync.Mutex
	slots     map[SlotID]*slot
	order     []SlotID
	observers []func(SlotID, Chord)
	suspended bool
	closed    bool
}

// NewRegistry creates an empty registry over facility. A nil sink disables
// label updates.
func NewRegistry(facility Facility, sink display.Sink, logger *zap.Logger) *Registry {
	if sink == nil {
		sink = display.Nop{}
	}
	return &Registry{
		facility: facility,
		sink:     sink,
		logger:   logger.Named("hotkeys"),
		slots:    make(map[SlotID]*slot),
	}
}

// Define adds an unbound slot whose chord will invoke callback. Redefining a
// slot replaces its callback and keeps its chord.
func (r *Registry) Define(id SlotID, callback func()) {
	r.mu.Lock()
	s, ok := r.slots[id]
	if ok {
		s.callback = callback
		r.mu.Unlock()
		return
	}
	r.slots[id] = &slot{id: id, callback: callback}
	r.order = append(r.order, id)
	r.mu.Unlock()
	r.sink.ChordLabel(string(id), UnboundLabel)
}

// Suspend stops every slot callback from running until Resume. Chords stay
// registered.
func (r *Registry) Suspend() {
	r.mu.Lock()
	r.suspended = true
	r.mu.Unlock()
}

// Resume undoes Suspend.
func (r *Registry) Resume() {
	r.mu.Lock()
	r.suspended = false
	r.mu.Unlock()
}

// Has reports whether id is a defined slot.
func (r *Registry) Has(id SlotID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.slots[id]
	return ok
}

// Slots returns the slot IDs in definition order.
func (r *Registry) Slots() []SlotID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SlotID, len(r.order))
	copy(out, r.order)
	return out
}

// Chord returns the chord bound to id.
func (r *Registry) Chord(id SlotID) (Chord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return Chord{}, false
	}
	return s.chord, true
}

// OnChange adds an observer called after any slot's chord changes.
func (r *Registry) OnChange(fn func(SlotID, Chord)) {
	r.mu.Lock()
	r.observers = append(r.observers, fn)
	r.mu.Unlock()
}

// Bind registers chord for slot id, replacing its previous chord. Binding the
// empty chord unbinds the slot. If the facility rejects the chord the slot is
// left unbound and the error is returned.
func (r *Registry) Bind(id SlotID, chord Chord) error {
	r.mu.Lock()
	s, ok := r.slots[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("bind %q: %w", id, ErrUnknownSlot)
	}
	if r.closed {
		r.mu.Unlock()
		return fmt.Errorf("bind %q: registry closed", id)
	}

	var changes []change
	r.release(s)

	var err error
	if !chord.IsEmpty() {
		for _, other := range r.order {
			o := r.slots[other]
			if o != s && o.chord.Equal(chord) {
				r.logger.Warn("Chord moved to another slot",
					zap.String("chord", chord.ID()),
					zap.String("from", string(o.id)),
					zap.String("to", string(id)))
				r.release(o)
				o.chord = Chord{}
				changes = append(changes, change{id: o.id})
			}
		}
		if err = r.facility.Register(chord.ID(), r.trigger(s)); err != nil {
			err = fmt.Errorf("register %s for %q: %w", chord.ID(), id, err)
			chord = Chord{}
		}
	}
	s.chord = chord
	changes = append(changes, change{id: id, chord: chord})
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("Hotkey registration failed", zap.Error(err))
	} else {
		r.logger.Info("Hotkey bound", zap.String("slot", string(id)), zap.String("chord", Label(chord)))
	}
	r.publish(changes)
	return err
}

// Unbind removes the chord from slot id.
func (r *Registry) Unbind(id SlotID) error {
	return r.Bind(id, Chord{})
}

// Close unregisters every bound chord. Slots keep their chords so they can
// still be read, for example to persist them. Close is idempotent.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, id := range r.order {
		r.release(r.slots[id])
	}
}

// trigger is the callback handed to the facility for s.
func (r *Registry) trigger(s *slot) func() {
	return func() {
		r.mu.Lock()
		callback, suspended := s.callback, r.suspended
		r.mu.Unlock()
		if suspended {
			r.logger.Debug("Hotkey suspended, ignoring", zap.String("slot", string(s.id)))
			return
		}
		callback()
	}
}

// release unregisters s's chord from the facility. Callers hold r.mu.
func (r *Registry) release(s *slot) {
	if s.chord.IsEmpty() {
		return
	}
	if err := r.facility.Unregister(s.chord.ID()); err != nil {
		r.logger.Warn("Failed to unregister hotkey",
			zap.String("slot", string(s.id)),
			zap.String("chord", s.chord.ID()),
			zap.Error(err))
	}
}

func (r *Registry) publish(changes []change) {
	r.mu.Lock()
	observers := make([]func(SlotID, Chord), len(r.observers))
	copy(observers, r.observers)
	r.mu.Unlock()

	for _, c := range changes {
		r.sink.ChordLabel(string(c.id), Label(c.chord))
		for _, fn := range observers {
			fn(c.id, c.chord)
		}
	}
}
