//go:build !(linux || darwin || windows)

package autostart

import "errors"

var errUnsupported = errors.New("autostart is not supported on this platform")

type unsupportedManager struct{}

// New returns a Manager that always fails.
func New() Manager { return unsupportedManager{} }

func (unsupportedManager) Location() string             { return "" }
func (unsupportedManager) IsInstalled() (bool, error)   { return false, errUnsupported }
func (unsupportedManager) Install(string, string) error { return errUnsupported }
func (unsupportedManager) Uninstall() error             { return errUnsupported }
