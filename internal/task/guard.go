package task

import "sync/atomic"

// Guard is a non-blocking mutual-exclusion lock. A caller that cannot take it
// is expected to drop its request rather than wait.
//
// The goroutine that acquired the guard is the one that releases it; the only
// exception is shutdown, which force-releases whatever is held.
type Guard struct {
	busy atomic.Bool
}

// TryAcquire takes the guard if it is free and reports whether it did.
func (g *Guard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release frees the guard. Releasing a free guard is a no-op.
func (g *Guard) Release() {
	g.busy.Store(false)
}

// Busy reports whether the guard is currently held.
func (g *Guard) Busy() bool {
	return g.busy.Load()
}
