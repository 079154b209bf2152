// Package gohook feeds OS-level keyboard and mouse events into an input.Hub
// using github.com/robotn/gohook (libuiohook). It needs cgo and, on Linux,
// an X11 session.
package gohook

import (
	"context"
	"unicode"

	hook "github.com/robotn/gohook"
	"go.uber.org/zap"

	"github.com/Guliveer/lafms/internal/input"
)

// Run starts the global hook and dispatches translated events to hub until
// ctx is done. Only one Run may be active per process.
func Run(ctx context.Context, hub *input.Hub, logger *zap.Logger) {
	logger = logger.Named("gohook")
	events := hook.Start()
	defer hook.End()
	logger.Info("Global input hook started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Global input hook stopped")
			return
		case ev, ok := <-events:
			if !ok {
				logger.Warn("Global input hook channel closed")
				return
			}
			if in, ok := translate(ev); ok {
				hub.Dispatch(in)
			}
		}
	}
}

// translate maps a libuiohook event to an input.Event. gohook keeps the
// libuiohook ordering, where KeyHold is the press and MouseHold the button
// press; typed and clicked events are synthesized duplicates and are dropped.
func translate(ev hook.Event) (input.Event, bool) {
	switch ev.Kind {
	case hook.KeyHold:
		return input.Event{Kind: input.KeyDown, Name: keyName(ev), When: ev.When}, true
	case hook.KeyUp:
		return input.Event{Kind: input.KeyUp, Name: keyName(ev), When: ev.When}, true
	case hook.MouseHold:
		kind := input.MouseDown
		if ev.Clicks >= 2 {
			kind = input.MouseDouble
		}
		return input.Event{Kind: kind, Button: int(ev.Button), When: ev.When}, true
	case hook.MouseDown:
		return input.Event{Kind: input.MouseUp, Button: int(ev.Button), When: ev.When}, true
	case hook.MouseMove, hook.MouseDrag:
		return input.Event{Kind: input.MouseMove, When: ev.When}, true
	case hook.MouseWheel:
		return input.Event{Kind: input.MouseWheel, When: ev.When}, true
	}
	return input.Event{}, false
}

func keyName(ev hook.Event) string {
	if name := hook.RawcodetoKeychar(ev.Rawcode); name != "" {
		return name
	}
	if ev.Keychar != hook.CharUndefined && unicode.IsPrint(ev.Keychar) {
		return string(ev.Keychar)
	}
	return ""
}
