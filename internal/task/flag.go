// Package task holds the small concurrency primitives the scheduler and the
// hotkey capture share: a waitable stop flag, a non-blocking execution guard
// and an explicit goroutine spawner with cancellation.
package task

import (
	"context"
	"sync"
	"time"
)

// Flag is a two-state condition (SET / CLEAR) that goroutines can wait on.
// All waiters are woken when the flag becomes SET.
type Flag struct {
	mu  sync.Mutex
	set bool
	ch  chan struct{} // closed while the flag is SET
}

// NewFlag creates a flag in the given initial state.
func NewFlag(set bool) *Flag {
	f := &Flag{ch: make(chan struct{})}
	if set {
		f.set = true
		close(f.ch)
	}
	return f
}

// Set moves the flag to SET and wakes every waiter. Setting a SET flag is a no-op.
func (f *Flag) Set() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLocked()
}

// Clear moves the flag to CLEAR. Clearing a CLEAR flag is a no-op.
func (f *Flag) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearLocked()
}

// Toggle flips the flag and returns the new state (true = SET).
func (f *Flag) Toggle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.set {
		f.clearLocked()
	} else {
		f.setLocked()
	}
	return f.set
}

// IsSet reports the current state.
func (f *Flag) IsSet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set
}

// Wait blocks until the flag is SET or the timeout elapses and reports
// whether the flag is SET. A non-positive timeout does not block.
func (f *Flag) Wait(timeout time.Duration) bool {
	return f.WaitContext(context.Background(), timeout)
}

// WaitContext is Wait that also returns early when ctx is done. It reports
// true when the flag is SET or ctx is done, i.e. when the caller should stop.
func (f *Flag) WaitContext(ctx context.Context, timeout time.Duration) bool {
	f.mu.Lock()
	set, ch := f.set, f.ch
	f.mu.Unlock()
	if set || ctx.Err() != nil {
		return true
	}
	if timeout <= 0 {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-ctx.Done():
		return true
	case <-timer.C:
		return f.IsSet()
	}
}

func (f *Flag) setLocked() {
	if f.set {
		return
	}
	f.set = true
	close(f.ch)
}

func (f *Flag) clearLocked() {
	if !f.set {
		return
	}
	f.set = false
	f.ch = make(chan struct{})
}
