package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/lafms/internal/models"
)

// Registry is an ordered pipeline of collection steps. It implements the
// scheduler's Collector: a run executes every registered step in
// registration order and stops at the first failing step.
type Registry struct {
	collectors []Collector
	logger     *zap.Logger
}

// NewRegistry creates a new collector registry with the given logger.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		collectors: make([]Collector, 0),
		logger:     logger.Named("collector"),
	}
}

// Register appends a step if it's available.
// Unavailable steps are logged and skipped.
func (r *Registry) Register(c Collector) {
	if c.IsAvailable() {
		r.collectors = append(r.collectors, c)
		r.logger.Info("Registered collector", zap.String("name", c.Name()))
	} else {
		r.logger.Warn("Collector not available, skipping", zap.String("name", c.Name()))
	}
}

// Collect runs every registered step for the run ID carried by ctx.
func (r *Registry) Collect(ctx context.Context) error {
	run := &Run{
		ID:      models.RunIDFromContext(ctx),
		Started: time.Now(),
	}
	if run.ID == "" {
		run.ID = run.Started.UTC().Format("20060102T150405")
	}

	for _, c := range r.collectors {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", c.Name(), err)
		}
		start := time.Now()
		if err := c.Collect(ctx, run); err != nil {
			return fmt.Errorf("%s: %w", c.Name(), err)
		}
		r.logger.Debug("Step finished",
			zap.String("collector", c.Name()),
			zap.String("run", run.ID),
			zap.Duration("took", time.Since(start)))
	}

	r.logger.Info("Collection artifacts",
		zap.String("run", run.ID),
		zap.Strings("files", run.Artifacts))
	return nil
}

// Collectors returns a copy of all registered collectors.
func (r *Registry) Collectors() []Collector {
	result := make([]Collector, len(r.collectors))
	copy(result, r.collectors)
	return result
}
