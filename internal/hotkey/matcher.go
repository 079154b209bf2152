package hotkey

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/Guliveer/lafms/internal/input"
)

// Matcher is a Facility built on raw input hooks. It tracks the set of held
// keys and fires a chord's callback once when the held set becomes exactly
// the chord; the chord fires again only after one of its keys is released.
type Matcher struct {
	logger *zap.Logger

	mu       sync.Mutex
	bindings map[string]*binding
	held     map[string]bool
}

type binding struct {
	chord    Chord
	callback func()
	latched  bool
}

var _ Facility = (*Matcher)(nil)
var _ input.Handler = (*Matcher)(nil)

// NewMatcher creates a Matcher. Hook it into an input.Source to start
// matching.
func NewMatcher(logger *zap.Logger) *Matcher {
	return &Matcher{
		logger:   logger.Named("matcher"),
		bindings: make(map[string]*binding),
		held:     make(map[string]bool),
	}
}

// Register binds callback to the chord identified by id.
func (m *Matcher) Register(id string, callback func()) error {
	chord := ParseChord(id)
	if chord.IsEmpty() {
		return ErrEmptyChord
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[chord.ID()] = &binding{chord: chord, callback: callback}
	m.logger.Debug("Registered chord", zap.String("chord", chord.ID()))
	return nil
}

// Unregister removes the chord identified by id. Unknown IDs are ignored.
func (m *Matcher) Unregister(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bindings, ParseChord(id).ID())
	return nil
}

// Registered returns the IDs of all registered chords, sorted.
func (m *Matcher) Registered() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.bindings))
	for id := range m.bindings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HandleInput implements input.Handler.
func (m *Matcher) HandleInput(ev input.Event) {
	if !ev.IsKey() {
		return
	}
	key, ok := input.CanonicalKey(ev.Name)
	if !ok {
		return
	}

	var fire []func()
	m.mu.Lock()
	switch ev.Kind {
	case input.KeyDown:
		if m.held[key] {
			break // auto-repeat
		}
		m.held[key] = true
		for _, b := range m.bindings {
			if !b.latched && m.heldExactly(b.chord) {
				b.latched = true
				fire = append(fire, b.callback)
			}
		}
	case input.KeyUp:
		delete(m.held, key)
		for _, b := range m.bindings {
			if b.chord.Has(key) {
				b.latched = false
			}
		}
	}
	m.mu.Unlock()

	for _, cb := range fire {
		go cb()
	}
}

func (m *Matcher) heldExactly(c Chord) bool {
	if len(m.held) != c.Len() {
		return false
	}
	for key := range m.held {
		if !c.Has(key) {
			return false
		}
	}
	return true
}
