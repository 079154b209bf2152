//go:build windows

// Windows-specific Platform implementation.
package platform

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// esDisplayRequired keeps the display on until the idle timer next elapses.
const esDisplayRequired = 0x00000002

var procSetThreadExecutionState = windows.NewLazySystemDLL("kernel32.dll").NewProc("SetThreadExecutionState")

// WindowsPlatform implements Platform for Windows systems.
type WindowsPlatform struct{}

// New creates a new Windows platform instance.
func New() Platform {
	return &WindowsPlatform{}
}

// Name returns the platform identifier.
func (p *WindowsPlatform) Name() string { return "windows" }

// KeepAwake resets the display idle timer.
func (p *WindowsPlatform) KeepAwake() error {
	prev, _, err := procSetThreadExecutionState.Call(esDisplayRequired)
	if prev == 0 {
		return fmt.Errorf("SetThreadExecutionState: %w", err)
	}
	return nil
}

// IsElevated checks the process token for elevation.
func (p *WindowsPlatform) IsElevated() (bool, error) {
	var token windows.Token
	if err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &token); err != nil {
		return false, fmt.Errorf("cannot check elevation: %w", err)
	}
	defer token.Close()
	return token.IsElevated(), nil
}
