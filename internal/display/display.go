// Package display defines the sink that receives everything the scheduler and
// the hotkey capture want to show the user: interval progress and chord labels.
// A sink never pushes back; implementations must return promptly.
package display

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sink receives progress updates and hotkey labels.
type Sink interface {
	// Progress publishes the elapsed fraction (0.0-1.0) of the current
	// interval and the time remaining. (0, 0) means idle.
	Progress(fraction float64, remaining time.Duration)

	// ChordLabel publishes the label shown next to a hotkey slot.
	ChordLabel(slot, label string)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Progress(float64, time.Duration) {}
func (Nop) ChordLabel(string, string)       {}

// LogSink writes updates to a zap logger. Progress ticks go to debug level,
// with an info line whenever the remaining time crosses a whole minute.
type LogSink struct {
	logger *zap.Logger

	mu         sync.Mutex
	lastMinute int64
}

// NewLogSink creates a sink backed by the given logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("display"), lastMinute: -1}
}

// Progress logs the progress tick.
func (s *LogSink) Progress(fraction float64, remaining time.Duration) {
	if fraction == 0 && remaining == 0 {
		s.mu.Lock()
		s.lastMinute = -1
		s.mu.Unlock()
		s.logger.Debug("Countdown idle")
		return
	}

	minute := int64(remaining / time.Minute)
	s.mu.Lock()
	crossed := minute != s.lastMinute
	s.lastMinute = minute
	s.mu.Unlock()

	fields := []zap.Field{
		zap.Float64("progress", fraction),
		zap.Duration("remaining", remaining.Truncate(time.Second)),
	}
	if crossed {
		s.logger.Info("Next collection", fields...)
		return
	}
	s.logger.Debug("Next collection", fields...)
}

// ChordLabel logs the slot label.
func (s *LogSink) ChordLabel(slot, label string) {
	s.logger.Info("Hotkey", zap.String("slot", slot), zap.String("label", label))
}
