// Package platform provides an OS abstraction layer for the few things the
// collector needs from the operating system directly: keeping the display
// awake and telling whether the process runs elevated.
// Each supported OS implements the Platform interface.
package platform

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// KeepAwakeInterval is how often the display keep-awake request is renewed.
const KeepAwakeInterval = time.Second

// Platform provides OS-specific functionality.
type Platform interface {
	// KeepAwake asks the OS not to turn off the display. The request
	// decays, so it must be renewed periodically.
	KeepAwake() error

	// IsElevated reports whether the process has administrator/root rights.
	IsElevated() (bool, error)

	// Name returns the platform name (windows, stub).
	Name() string
}

// RunKeepAwake renews the keep-awake request every interval until ctx is
// done. The first failure is logged as a warning, later ones at debug.
func RunKeepAwake(ctx context.Context, p Platform, interval time.Duration, logger *zap.Logger) {
	logger = logger.Named("keep-awake")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	warned := false
	ping := func() {
		if err := p.KeepAwake(); err != nil {
			if !warned {
				logger.Warn("Keep-awake request failed", zap.String("platform", p.Name()), zap.Error(err))
				warned = true
			} else {
				logger.Debug("Keep-awake request failed", zap.Error(err))
			}
		}
	}

	ping()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ping()
		}
	}
}

// WarnIfNotElevated logs a warning when the process is not elevated: global
// input hooks cannot observe windows of elevated processes such as the game.
func WarnIfNotElevated(p Platform, logger *zap.Logger) {
	elevated, err := p.IsElevated()
	if err != nil {
		logger.Debug("Cannot check elevation", zap.Error(err))
		return
	}
	if !elevated {
		logger.Warn("Not running elevated, hotkeys may not fire while an elevated game window is focused")
	}
}
