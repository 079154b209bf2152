package scheduler

import (
	"context"
	"time"

	"github.com/Guliveer/lafms/internal/display"
	"github.com/Guliveer/lafms/internal/task"
)

// DefaultProgressTick is how often progress is republished.
const DefaultProgressTick = time.Second

// ProgressReporter publishes the elapsed fraction and remaining time of one
// scheduling interval. It never influences scheduling.
type ProgressReporter struct {
	sink display.Sink
	stop *task.Flag
	tick time.Duration
}

// NewProgressReporter creates a reporter that stops early once stop is SET.
func NewProgressReporter(sink display.Sink, stop *task.Flag, tick time.Duration) *ProgressReporter {
	if tick <= 0 {
		tick = DefaultProgressTick
	}
	return &ProgressReporter{sink: sink, stop: stop, tick: tick}
}

// Run publishes progress for the interval beginning at start until it
// elapses, the stop flag is SET or ctx is done, then publishes the idle
// state (0, 0).
func (p *ProgressReporter) Run(ctx context.Context, start time.Time, interval time.Duration) {
	defer p.sink.Progress(0, 0)
	if interval <= 0 {
		return
	}

	deadline := start.Add(interval)
	for {
		now := time.Now()
		remaining := deadline.Sub(now)
		if remaining <= 0 {
			return
		}
		p.sink.Progress(fraction(now.Sub(start), interval), remaining)

		wait := p.tick
		if remaining < wait {
			wait = remaining
		}
		if p.stop.WaitContext(ctx, wait) {
			return
		}
	}
}

func fraction(elapsed, interval time.Duration) float64 {
	f := float64(elapsed) / float64(interval)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
