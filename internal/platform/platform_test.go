package platform

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakePlatform struct {
	pings    atomic.Int32
	err      error
	elevated bool
}

func (f *fakePlatform) KeepAwake() error {
	f.pings.Add(1)
	return f.err
}
func (f *fakePlatform) IsElevated() (bool, error) { return f.elevated, nil }
func (f *fakePlatform) Name() string              { return "fake" }

func TestRunKeepAwakePingsUntilCancelled(t *testing.T) {
	p := &fakePlatform{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunKeepAwake(ctx, p, 10*time.Millisecond, zap.NewNop())
		close(done)
	}()

	time.Sleep(55 * time.Millisecond)
	cancel()
	<-done

	n := p.pings.Load()
	if n < 3 {
		t.Errorf("pings = %d, want at least 3", n)
	}
	time.Sleep(30 * time.Millisecond)
	if p.pings.Load() != n {
		t.Error("pinged after cancel")
	}
}

func TestRunKeepAwakeWarnsOnce(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := &fakePlatform{err: errors.New("denied")}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	RunKeepAwake(ctx, p, 5*time.Millisecond, zap.New(core))

	if got := logs.Len(); got != 1 {
		t.Errorf("warnings = %d, want 1", got)
	}
}

func TestWarnIfNotElevated(t *testing.T) {
	tests := []struct {
		elevated bool
		want     int
	}{
		{true, 0},
		{false, 1},
	}
	for _, tt := range tests {
		core, logs := observer.New(zap.WarnLevel)
		WarnIfNotElevated(&fakePlatform{elevated: tt.elevated}, zap.New(core))
		if logs.Len() != tt.want {
			t.Errorf("elevated=%v: warnings = %d, want %d", tt.elevated, logs.Len(), tt.want)
		}
	}
}

func TestNewReportsName(t *testing.T) {
	p := New()
	if p.Name() == "" {
		t.Error("Name() is empty")
	}
	if err := p.KeepAwake(); err != nil && p.Name() == "stub" {
		t.Errorf("stub KeepAwake() error = %v", err)
	}
}
