package task

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Handle controls a goroutine started by Spawn.
type Handle struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
}

// Spawn runs fn on a new goroutine and returns a handle to it. The context
// passed to fn is cancelled by Handle.Cancel. A panic inside fn is recovered
// and logged so it cannot take the process down.
func Spawn(logger *zap.Logger, name string, fn func(ctx context.Context)) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		defer cancel()
		defer func() {
			if r := recover(); r != nil && logger != nil {
				logger.Error("Background task panicked",
					zap.String("task", name),
					zap.Any("panic", r),
					zap.Stack("stack"))
			}
		}()
		fn(ctx)
	}()

	return h
}

// Name returns the name the task was spawned with.
func (h *Handle) Name() string { return h.name }

// Cancel asks the task to stop. It does not wait for it.
func (h *Handle) Cancel() {
	if h != nil {
		h.cancel()
	}
}

// Done is closed once the task function has returned.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the task returns or the timeout elapses, reporting
// whether the task finished.
func (h *Handle) Wait(timeout time.Duration) bool {
	if h == nil {
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-h.done:
		return true
	case <-timer.C:
		return false
	}
}
