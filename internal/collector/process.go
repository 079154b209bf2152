// Game process gate: collection only makes sense while the game is running.
// Uses gopsutil for cross-platform process listing.
package collector

import (
	"context"
	"errors"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// ErrGameNotRunning is returned when the configured game process is absent.
var ErrGameNotRunning = errors.New("game process not running")

// normalizedStatuses maps raw gopsutil status strings to the values logged
// for the game process.
var normalizedStatuses = map[string]string{
	"running":    "running",
	"sleep":      "sleeping",
	"sleeping":   "sleeping",
	"disk-sleep": "sleeping",
	"idle":       "idle",
	"stop":       "stopped",
	"stopped":    "stopped",
	"zombie":     "zombie",
}

// normalizeStatus maps a raw gopsutil status to a display value. An empty
// status, common on Windows, is reported as "running".
func normalizeStatus(raw []string) string {
	if len(raw) == 0 || raw[0] == "" {
		return "running"
	}
	key := strings.ToLower(strings.TrimSpace(raw[0]))
	if mapped, ok := normalizedStatuses[key]; ok {
		return mapped
	}
	return key
}

// GameProcessCollector fails the run when the game is not running.
type GameProcessCollector struct {
	name   string
	logger *zap.Logger
	list   func(ctx context.Context) ([]*process.Process, error)
}

// NewGameProcessCollector creates a gate for the process with the given
// executable name, compared case-insensitively. An empty name disables it.
func NewGameProcessCollector(name string, logger *zap.Logger) *GameProcessCollector {
	return &GameProcessCollector{
		name:   name,
		logger: logger.Named("game-process"),
		list:   process.ProcessesWithContext,
	}
}

// Name returns the collector identifier.
func (c *GameProcessCollector) Name() string { return "game-process" }

// Collect succeeds if a process with the configured name exists.
// Processes whose name cannot be read are skipped.
func (c *GameProcessCollector) Collect(ctx context.Context, run *Run) error {
	procs, err := c.list(ctx)
	if err != nil {
		return err
	}
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || !strings.EqualFold(name, c.name) {
			continue
		}
		status, _ := p.StatusWithContext(ctx)
		c.logger.Debug("Game process found",
			zap.Int32("pid", p.Pid),
			zap.String("status", normalizeStatus(status)),
			zap.String("run", run.ID))
		return nil
	}
	return ErrGameNotRunning
}

// IsAvailable returns true when a process name is configured.
func (c *GameProcessCollector) IsAvailable() bool { return c.name != "" }
