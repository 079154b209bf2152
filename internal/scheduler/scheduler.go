// Package scheduler serializes collection attempts coming from three
// triggers (manual, periodic timer, global hotkey) onto one Collector.
// At most one collection runs at a time; a trigger that finds the execution
// guard busy is dropped, never queued. Periodic collection runs on a fixed
// phase: the next fire time is the previous fire time plus the interval, so a
// slow collection makes the schedule catch up instead of drifting.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Guliveer/lafms/internal/display"
	"github.com/Guliveer/lafms/internal/models"
	"github.com/Guliveer/lafms/internal/task"
)

// busyLogInterval bounds how often a dropped trigger is logged at info level.
const busyLogInterval = 10 * time.Second

// Collector performs one collection. Errors are logged by the scheduler and
// never stop it. The run ID is available through models.RunIDFromContext.
type Collector interface {
	Collect(ctx context.Context) error
}

// CollectorFunc adapts a function to the Collector interface.
type CollectorFunc func(ctx context.Context) error

// Collect calls f(ctx).
func (f CollectorFunc) Collect(ctx context.Context) error { return f(ctx) }

// Options tunes a Scheduler. Zero values select the defaults.
type Options struct {
	// Intervals is the allowed interval set. Defaults to AllowedIntervals.
	Intervals []time.Duration
	// Interval is the initial periodic interval. Defaults to Intervals[0].
	Interval time.Duration
	// Timeout bounds each collection's context. Zero means no deadline.
	Timeout time.Duration
	// ProgressTick is the progress republish cadence. Defaults to one second.
	ProgressTick time.Duration
}

// Status is a point-in-time view of the scheduler.
type Status struct {
	Armed    bool
	Busy     bool
	Interval time.Duration
}

// Scheduler manages manual and periodic collection.
type Scheduler struct {
	collector Collector
	guard     *task.Guard
	stop      *task.Flag
	logger    *zap.Logger
	progress  *ProgressReporter

	intervals []time.Duration
	timeout   time.Duration

	mu       sync.Mutex
	interval time.Duration
	closed   bool
	loop     *task.Handle
	onRun    func(models.RunReport)

	busyLog rate.Sometimes
}

// New creates a Scheduler. The guard serializes collections and stop is the
// flag that controls periodic collection: SET means stopped. A SET flag is the
// normal starting state.
func New(collector Collector, guard *task.Guard, stop *task.Flag, sink display.Sink, logger *zap.Logger, opts Options) (*Scheduler, error) {
	if len(opts.Intervals) == 0 {
		opts.Intervals = AllowedIntervals
	}
	if opts.Interval == 0 {
		opts.Interval = opts.Intervals[0]
	}
	if !containsInterval(opts.Intervals, opts.Interval) {
		return nil, fmt.Errorf("initial interval %s: %w", opts.Interval, ErrInvalidInterval)
	}
	if sink == nil {
		sink = display.Nop{}
	}
	stop.Set()

	return &Scheduler{
		collector: collector,
		guard:     guard,
		stop:      stop,
		logger:    logger.Named("scheduler"),
		progress:  NewProgressReporter(sink, stop, opts.ProgressTick),
		intervals: opts.Intervals,
		timeout:   opts.Timeout,
		interval:  opts.Interval,
		busyLog:   rate.Sometimes{Interval: busyLogInterval},
	}, nil
}

// OnRun sets the observer invoked after every collection attempt, including
// attempts dropped because another collection was running.
func (s *Scheduler) OnRun(fn func(models.RunReport)) {
	s.mu.Lock()
	s.onRun = fn
	s.mu.Unlock()
}

// RunOnce starts a single collection in the background and returns
// immediately. It is dropped if a collection is already running.
func (s *Scheduler) RunOnce(trigger models.Trigger) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		s.logger.Debug("Ignoring trigger after shutdown", zap.String("trigger", string(trigger)))
		return
	}
	task.Spawn(s.logger, "collect-once", func(context.Context) {
		s.execute(trigger)
	})
}

// Toggle arms periodic collection if it is stopped and stops it if it is
// armed. It returns true when the scheduler is now armed. Arming collects
// immediately and then at start+interval, start+2*interval, ...
func (s *Scheduler) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	if stopped := s.stop.Toggle(); stopped {
		s.loop.Cancel()
		s.loop = nil
		s.logger.Info("Periodic collection stopped")
		return false
	}

	interval := s.interval
	start := time.Now()
	s.loop = task.Spawn(s.logger, "schedule", func(ctx context.Context) {
		s.run(ctx, start, interval)
	})
	s.logger.Info("Periodic collection started",
		zap.String("interval", HumanizeInterval(interval)),
		zap.Time("next", start.Add(interval)))
	return true
}

// SetInterval changes the periodic interval. A running schedule keeps its
// current interval; the new one applies the next time it is armed.
func (s *Scheduler) SetInterval(d time.Duration) error {
	if !containsInterval(s.intervals, d) {
		return fmt.Errorf("%s: %w", d, ErrInvalidInterval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interval == d {
		return nil
	}
	s.interval = d
	if !s.stop.IsSet() {
		s.logger.Info("Interval changed, restart periodic collection to apply",
			zap.String("interval", HumanizeInterval(d)))
	} else {
		s.logger.Info("Interval changed", zap.String("interval", HumanizeInterval(d)))
	}
	return nil
}

// Interval returns the configured periodic interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Armed reports whether periodic collection is running.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && !s.stop.IsSet()
}

// Status returns the current scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Armed:    !s.closed && !s.stop.IsSet(),
		Busy:     s.guard.Busy(),
		Interval: s.interval,
	}
}

// Close stops periodic collection, force-releases the execution guard and
// ignores any later trigger. An in-flight collection is left to finish.
// Close is idempotent and does not block.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stop.Set()
	s.loop.Cancel()
	s.loop = nil
	s.guard.Release()
	s.logger.Debug("Scheduler closed")
}

// run is the periodic loop. It exits at the first wait checkpoint that
// observes the stop flag or a cancelled ctx.
func (s *Scheduler) run(ctx context.Context, start time.Time, interval time.Duration) {
	next := start.Add(interval)
	for {
		if ctx.Err() != nil || s.stop.IsSet() {
			return
		}
		cycleStart := next.Add(-interval)
		task.Spawn(s.logger, "progress", func(context.Context) {
			s.progress.Run(ctx, cycleStart, interval)
		})
		s.execute(models.TriggerSchedule)

		if s.stop.WaitContext(ctx, time.Until(next)) {
			s.logger.Debug("Schedule loop exiting")
			return
		}
		next = next.Add(interval)
	}
}

// execute runs one guarded collection and reports the attempt.
func (s *Scheduler) execute(trigger models.Trigger) models.RunReport {
	report := models.RunReport{
		ID:      uuid.NewString(),
		Trigger: trigger,
		Started: time.Now(),
	}

	if !s.guard.TryAcquire() {
		report.Outcome = models.OutcomeDropped
		s.logBusy(trigger)
		s.notify(report)
		return report
	}

	s.logger.Info("Collecting", zap.String("trigger", string(trigger)), zap.String("run", report.ID))
	err := s.collect(report.ID)
	s.guard.Release()

	report.Duration = time.Since(report.Started)
	if err != nil {
		report.Outcome = models.OutcomeFailed
		report.Error = err.Error()
		s.logger.Error("Collection failed",
			zap.String("run", report.ID),
			zap.Duration("took", report.Duration),
			zap.Error(err))
	} else {
		report.Outcome = models.OutcomeOK
		s.logger.Info("Collection finished",
			zap.String("run", report.ID),
			zap.Duration("took", report.Duration))
	}
	s.notify(report)
	return report
}

// collect invokes the collector, turning a panic into an error.
func (s *Scheduler) collect(runID string) (err error) {
	ctx := models.ContextWithRunID(context.Background(), runID)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Collector panicked", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("collector panicked: %v", r)
		}
	}()
	return s.collector.Collect(ctx)
}

func (s *Scheduler) logBusy(trigger models.Trigger) {
	logged := false
	s.busyLog.Do(func() {
		logged = true
		s.logger.Info("Collection already running, trigger dropped", zap.String("trigger", string(trigger)))
	})
	if !logged {
		s.logger.Debug("Collection already running, trigger dropped", zap.String("trigger", string(trigger)))
	}
}

func (s *Scheduler) notify(report models.RunReport) {
	s.mu.Lock()
	fn := s.onRun
	s.mu.Unlock()
	if fn != nil {
		fn(report)
	}
}
