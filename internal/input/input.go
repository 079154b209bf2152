// Package input abstracts raw keyboard and mouse hooks behind a small
// capability: a Source that Handlers hook into and unhook from. The OS-level
// adapter lives in input/gohook; tests use the scripted source in
// input/inputtest.
package input

import (
	"errors"
	"sync"
	"time"
)

// Kind is the type of a raw input event.
type Kind int

const (
	KeyDown Kind = iota
	KeyUp
	MouseDown
	MouseDouble
	MouseUp
	MouseMove
	MouseWheel
)

func (k Kind) String() string {
	switch k {
	case KeyDown:
		return "key-down"
	case KeyUp:
		return "key-up"
	case MouseDown:
		return "mouse-down"
	case MouseDouble:
		return "mouse-double"
	case MouseUp:
		return "mouse-up"
	case MouseMove:
		return "mouse-move"
	case MouseWheel:
		return "mouse-wheel"
	default:
		return "unknown"
	}
}

// Event is one raw keyboard or mouse event.
type Event struct {
	Kind   Kind
	Name   string // key name as reported by the hook, keyboard events only
	Button int    // mouse button, mouse events only
	When   time.Time
}

// IsKey reports whether the event is a key press or release.
func (e Event) IsKey() bool { return e.Kind == KeyDown || e.Kind == KeyUp }

// IsClick reports whether the event is a mouse button press or double click.
func (e Event) IsClick() bool { return e.Kind == MouseDown || e.Kind == MouseDouble }

// Handler receives raw events. It is called on the source's goroutine and
// must return promptly. A handler may unhook itself from inside HandleInput.
type Handler interface {
	HandleInput(ev Event)
}

// Source is the hook/unhook capability over raw input.
//
// HookExclusive hooks h as the sole receiver of input until it is unhooked.
// Key releases still reach the other handlers so none of them is left
// believing a key is held.
type Source interface {
	Hook(h Handler) error
	HookExclusive(h Handler) error
	Unhook(h Handler)
}

var (
	// ErrClosed is returned by Hook after the source was closed.
	ErrClosed = errors.New("input source closed")
	// ErrExclusive is returned by HookExclusive while another handler holds
	// the source exclusively.
	ErrExclusive = errors.New("input source hooked exclusively")
)

// Hub is a Source that fans every dispatched event out to the hooked
// handlers. Events are delivered synchronously, in hook order.
type Hub struct {
	mu        sync.Mutex
	handlers  []Handler
	exclusive Handler
	closed    bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Hook adds h. Hooking an already hooked handler is a no-op.
func (h *Hub) Hook(handler Handler) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	for _, existing := range h.handlers {
		if existing == handler {
			return nil
		}
	}
	h.handlers = append(h.handlers, handler)
	return nil
}

// HookExclusive makes handler the only receiver of presses, clicks and
// motion until it is unhooked.
func (h *Hub) HookExclusive(handler Handler) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if h.exclusive != nil && h.exclusive != handler {
		return ErrExclusive
	}
	h.exclusive = handler
	return nil
}

// Unhook removes h. Unhooking an unknown handler is a no-op.
func (h *Hub) Unhook(handler Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.exclusive == handler {
		h.exclusive = nil
		return
	}
	for i, existing := range h.handlers {
		if existing == handler {
			h.handlers = append(h.handlers[:i], h.handlers[i+1:]...)
			return
		}
	}
}

// Hooked reports how many handlers are hooked, the exclusive one included.
func (h *Hub) Hooked() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.handlers)
	if h.exclusive != nil {
		n++
	}
	return n
}

// Dispatch delivers ev to every handler hooked at the time of the call.
// While a handler holds the hub exclusively only it receives ev, unless ev is
// a key release.
func (h *Hub) Dispatch(ev Event) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	exclusive := h.exclusive
	var handlers []Handler
	if exclusive == nil || ev.Kind == KeyUp {
		handlers = make([]Handler, len(h.handlers))
		copy(handlers, h.handlers)
	}
	h.mu.Unlock()

	if exclusive != nil {
		exclusive.HandleInput(ev)
	}
	for _, handler := range handlers {
		if handler != exclusive {
			handler.HandleInput(ev)
		}
	}
}

// Close unhooks every handler and stops dispatching. It is idempotent.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.handlers = nil
	h.exclusive = nil
}
