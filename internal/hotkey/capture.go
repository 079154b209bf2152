package hotkey

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Guliveer/lafms/internal/display"
	"github.com/Guliveer/lafms/internal/input"
	"github.com/Guliveer/lafms/internal/task"
)

// CaptureState is the state of a capture session.
type CaptureState int

const (
	Idle CaptureState = iota
	Capturing
	Committed
	Cancelled
)

func (s CaptureState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome describes a finished capture session.
type Outcome struct {
	Slot  SlotID
	State CaptureState
	Chord Chord
}

// Capturer runs interactive rebinding. While a session is active the user
// presses a chord; it is committed when the last held key is released. A
// mouse click cancels the session and leaves the slot unbound. Only one
// session runs at a time, and it holds the input source exclusively with
// every slot callback suspended.
type Capturer struct {
	source   input.Source
	registry *Registry
	guard    *task.Guard
	sink     display.Sink
	logger   *zap.Logger

	mu     sync.Mutex
	active *session
	onDone func(Outcome)
}

// NewCapturer creates a Capturer. The guard is held for the whole session;
// pass a guard that is not shared with the collection scheduler.
func NewCapturer(source input.Source, registry *Registry, guard *task.Guard, sink display.Sink, logger *zap.Logger) *Capturer {
	if sink == nil {
		sink = display.Nop{}
	}
	return &Capturer{
		source:   source,
		registry: registry,
		guard:    guard,
		sink:     sink,
		logger:   logger.Named("capture"),
	}
}

// OnDone sets the observer called when a session commits or is cancelled.
func (c *Capturer) OnDone(fn func(Outcome)) {
	c.mu.Lock()
	c.onDone = fn
	c.mu.Unlock()
}

// Rebind starts a capture session for slot and returns immediately. It
// returns false, and does nothing, if a session is already active or the slot
// is unknown. The slot's current chord is unregistered before capturing.
func (c *Capturer) Rebind(slot SlotID) bool {
	if !c.registry.Has(slot) {
		c.logger.Warn("Rebind requested for unknown slot", zap.String("slot", string(slot)))
		return false
	}
	if !c.guard.TryAcquire() {
		c.logger.Info("Capture already in progress, rebind ignored", zap.String("slot", string(slot)))
		return false
	}

	if err := c.registry.Unbind(slot); err != nil {
		c.logger.Warn("Failed to unbind slot before capture", zap.String("slot", string(slot)), zap.Error(err))
	}

	s := &session{
		capturer: c,
		slot:     slot,
		state:    Capturing,
		held:     make(map[string]bool),
	}
	c.mu.Lock()
	c.active = s
	c.mu.Unlock()

	c.registry.Suspend()
	c.sink.ChordLabel(string(slot), PromptLabel)
	if err := c.source.HookExclusive(s); err != nil {
		c.logger.Error("Failed to install capture hooks", zap.Error(err))
		s.cancel()
		return false
	}
	c.logger.Info("Capturing chord", zap.String("slot", string(slot)))
	return true
}

// Active returns the slot being captured, if any.
func (c *Capturer) Active() (SlotID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return "", false
	}
	return c.active.slot, true
}

// Close cancels an active session, removing its hooks. It is idempotent.
func (c *Capturer) Close() {
	c.mu.Lock()
	s := c.active
	c.mu.Unlock()
	if s != nil {
		s.cancel()
	}
}

func (c *Capturer) finish(s *session, state CaptureState, chord Chord) {
	c.source.Unhook(s)

	if state == Committed && chord.IsEmpty() {
		state = Cancelled
	}
	if state == Committed {
		if err := c.registry.Bind(s.slot, chord); err != nil {
			state = Cancelled
			chord = Chord{}
		}
	} else if err := c.registry.Unbind(s.slot); err != nil {
		c.logger.Warn("Failed to leave slot unbound", zap.String("slot", string(s.slot)), zap.Error(err))
	}
	c.registry.Resume()

	c.mu.Lock()
	if c.active == s {
		c.active = nil
	}
	fn := c.onDone
	c.mu.Unlock()
	c.guard.Release()

	c.logger.Info("Capture finished",
		zap.String("slot", string(s.slot)),
		zap.Stringer("state", state),
		zap.String("chord", Label(chord)))
	if fn != nil {
		fn(Outcome{Slot: s.slot, State: state, Chord: chord})
	}
}

// session is one capture. It is the input handler hooked for its duration.
type session struct {
	capturer *Capturer
	slot     SlotID

	mu    sync.Mutex
	state CaptureState
	held  map[string]bool
	count int
	chord Chord
}

func (s *session) HandleInput(ev input.Event) {
	switch {
	case ev.IsClick():
		s.cancel()
	case ev.Kind == input.KeyDown:
		s.keyDown(ev.Name)
	case ev.Kind == input.KeyUp:
		s.keyUp(ev.Name)
	}
}

func (s *session) keyDown(name string) {
	key, ok := input.CanonicalKey(name)
	if !ok {
		return
	}
	s.mu.Lock()
	if s.state != Capturing || s.held[key] {
		s.mu.Unlock()
		return
	}
	s.held[key] = true
	s.count++
	s.chord.Add(key)
	label := s.chord.ID()
	s.mu.Unlock()

	s.capturer.sink.ChordLabel(string(s.slot), label)
}

func (s *session) keyUp(name string) {
	key, ok := input.CanonicalKey(name)
	if !ok {
		return
	}
	s.mu.Lock()
	// Releases of keys pressed before the session started are ignored.
	if s.state != Capturing || !s.held[key] {
		s.mu.Unlock()
		return
	}
	delete(s.held, key)
	if s.count > 0 {
		s.count--
	}
	if s.count > 0 {
		s.mu.Unlock()
		return
	}
	s.state = Committed
	chord := s.chord
	s.mu.Unlock()

	s.capturer.finish(s, Committed, chord)
}

func (s *session) cancel() {
	s.mu.Lock()
	if s.state != Capturing {
		s.mu.Unlock()
		return
	}
	s.state = Cancelled
	s.mu.Unlock()

	s.capturer.finish(s, Cancelled, Chord{})
}
