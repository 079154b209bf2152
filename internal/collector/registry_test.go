package collector

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Guliveer/lafms/internal/models"
)

type stepFunc struct {
	name      string
	available bool
	fn        func(ctx context.Context, run *Run) error
}

func (s *stepFunc) Name() string      { return s.name }
func (s *stepFunc) IsAvailable() bool { return s.available }
func (s *stepFunc) Collect(ctx context.Context, run *Run) error {
	return s.fn(ctx, run)
}

func TestRegistryRunsStepsInOrder(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	var order []string
	var seenID string
	for _, name := range []string{"one", "two", "three"} {
		name := name
		r.Register(&stepFunc{name: name, available: true, fn: func(_ context.Context, run *Run) error {
			order = append(order, name)
			seenID = run.ID
			run.Artifacts = append(run.Artifacts, name+".out")
			return nil
		}})
	}

	ctx := models.ContextWithRunID(context.Background(), "run-42")
	if err := r.Collect(ctx); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if strings.Join(order, ",") != "one,two,three" {
		t.Errorf("order = %v, want [one two three]", order)
	}
	if seenID != "run-42" {
		t.Errorf("run ID = %q, want run-42", seenID)
	}
}

func TestRegistrySkipsUnavailable(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	r.Register(&stepFunc{name: "on", available: true})
	r.Register(&stepFunc{name: "off", available: false})

	got := r.Collectors()
	if len(got) != 1 || got[0].Name() != "on" {
		t.Errorf("Collectors() = %v, want only \"on\"", got)
	}
}

func TestRegistryStopsAtFirstFailure(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	boom := errors.New("boom")
	ran := false
	r.Register(&stepFunc{name: "gate", available: true, fn: func(context.Context, *Run) error { return boom }})
	r.Register(&stepFunc{name: "after", available: true, fn: func(context.Context, *Run) error {
		ran = true
		return nil
	}})

	err := r.Collect(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Collect() error = %v, want boom", err)
	}
	if !strings.HasPrefix(err.Error(), "gate: ") {
		t.Errorf("error %q does not name the failing step", err)
	}
	if ran {
		t.Error("step after failure ran")
	}
}

func TestRegistryHonoursCancelledContext(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	r.Register(&stepFunc{name: "never", available: true, fn: func(context.Context, *Run) error {
		t.Error("step ran with cancelled context")
		return nil
	}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Collect(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Collect() error = %v, want context.Canceled", err)
	}
}
