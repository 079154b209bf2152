//go:build !(windows || linux || darwin)

package system

import (
	"go.uber.org/zap"

	"github.com/Guliveer/lafms/internal/hotkey"
)

// Facility rejects every chord on platforms without OS hotkey support.
type Facility struct{}

var _ hotkey.Facility = (*Facility)(nil)

func New(*zap.Logger) *Facility { return &Facility{} }

func (*Facility) Register(string, func()) error { return hotkey.ErrUnsupportedChord }
func (*Facility) Unregister(string) error       { return nil }
func (*Facility) Close()                        {}
