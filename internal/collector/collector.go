// Package collector defines the steps that make up one market-data collection
// and the Registry that runs them in order.
package collector

import (
	"context"
	"time"
)

// Collector is one step of a collection run.
type Collector interface {
	// Name returns the unique identifier for this step.
	Name() string

	// Collect performs the step. Steps append the files they produce to
	// run.Artifacts so later steps can consume them.
	Collect(ctx context.Context, run *Run) error

	// IsAvailable checks if this step can run on the current platform and
	// configuration. Steps that return false will not be registered.
	IsAvailable() bool
}

// Run is the state shared by the steps of one collection.
type Run struct {
	ID        string
	Started   time.Time
	Artifacts []string
}
