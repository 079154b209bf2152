package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/Guliveer/lafms/internal/display"
	"github.com/Guliveer/lafms/internal/task"
)

func TestProgressReporterRunsToIdle(t *testing.T) {
	rec := display.NewRecorder()
	p := NewProgressReporter(rec, task.NewFlag(false), 20*time.Millisecond)

	p.Run(context.Background(), time.Now(), 120*time.Millisecond)

	updates := rec.ProgressUpdates()
	if len(updates) < 3 {
		t.Fatalf("got %d updates, want at least 3", len(updates))
	}
	last := updates[len(updates)-1]
	if last.Fraction != 0 || last.Remaining != 0 {
		t.Errorf("last update = %+v, want idle (0, 0)", last)
	}

	prev := -1.0
	for _, u := range updates[:len(updates)-1] {
		if u.Fraction < 0 || u.Fraction > 1 {
			t.Errorf("fraction %v out of range", u.Fraction)
		}
		if u.Fraction < prev {
			t.Errorf("fraction went backwards: %v after %v", u.Fraction, prev)
		}
		if u.Remaining <= 0 || u.Remaining > 120*time.Millisecond {
			t.Errorf("remaining %v out of range", u.Remaining)
		}
		prev = u.Fraction
	}
}

func TestProgressReporterStopsOnFlag(t *testing.T) {
	rec := display.NewRecorder()
	stop := task.NewFlag(false)
	p := NewProgressReporter(rec, stop, 10*time.Millisecond)

	go func() {
		time.Sleep(40 * time.Millisecond)
		stop.Set()
	}()

	start := time.Now()
	p.Run(context.Background(), start, time.Hour)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("reporter outlived the stop flag by %v", elapsed)
	}

	updates := rec.ProgressUpdates()
	if last := updates[len(updates)-1]; last.Fraction != 0 || last.Remaining != 0 {
		t.Errorf("last update = %+v, want idle (0, 0)", last)
	}
}

func TestFraction(t *testing.T) {
	tests := []struct {
		elapsed, interval time.Duration
		want              float64
	}{
		{0, time.Minute, 0},
		{30 * time.Second, time.Minute, 0.5},
		{2 * time.Minute, time.Minute, 1},
		{-time.Second, time.Minute, 0},
	}
	for _, tt := range tests {
		if got := fraction(tt.elapsed, tt.interval); got != tt.want {
			t.Errorf("fraction(%v, %v) = %v, want %v", tt.elapsed, tt.interval, got, tt.want)
		}
	}
}
