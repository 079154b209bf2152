// Package models defines the data structures shared between the scheduler,
// the collection pipeline and the history journal.
package models

import (
	"context"
	"time"
)

// Trigger identifies what started a collection attempt.
type Trigger string

const (
	TriggerManual   Trigger = "manual"
	TriggerSchedule Trigger = "schedule"
	TriggerHotkey   Trigger = "hotkey"
)

// Outcome is the result of a collection attempt.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeFailed  Outcome = "failed"
	OutcomeDropped Outcome = "dropped" // another collection held the guard
)

// RunReport describes a single collection attempt.
type RunReport struct {
	ID       string        `json:"id"`
	Trigger  Trigger       `json:"trigger"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Outcome  Outcome       `json:"outcome"`
	Error    string        `json:"error,omitempty"`
}

type runIDKey struct{}

// ContextWithRunID returns a copy of ctx carrying the collection run ID.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext extracts the run ID set by ContextWithRunID, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
