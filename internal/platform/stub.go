//go:build !windows

// Stub Platform implementation for non-Windows builds.
// Keep-awake is a no-op; elevation means running as root.
package platform

import "os"

// StubPlatform is the Platform for non-Windows operating systems.
type StubPlatform struct{}

// New creates a stub platform instance for non-Windows systems.
func New() Platform {
	return &StubPlatform{}
}

// Name returns the platform identifier.
func (p *StubPlatform) Name() string { return "stub" }

// KeepAwake is a no-op on non-Windows platforms.
func (p *StubPlatform) KeepAwake() error { return nil }

// IsElevated reports whether the effective user is root.
func (p *StubPlatform) IsElevated() (bool, error) {
	return os.Geteuid() == 0, nil
}
