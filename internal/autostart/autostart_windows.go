//go:build windows

package autostart

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const runKey = `Software\Microsoft\Windows\CurrentVersion\Run`

// windowsManager implements Manager with a value under the per-user Run key.
type windowsManager struct{}

// New returns a Manager that uses HKCU\...\CurrentVersion\Run.
func New() Manager {
	return &windowsManager{}
}

// Location returns the registry value path.
func (w *windowsManager) Location() string { return `HKCU\` + runKey + `\` + appName }

// IsInstalled checks whether the Run value exists.
func (w *windowsManager) IsInstalled() (bool, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.QUERY_VALUE)
	if err != nil {
		return false, fmt.Errorf("opening Run key: %w", err)
	}
	defer k.Close()

	if _, _, err := k.GetStringValue(appName); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading Run value: %w", err)
	}
	return true, nil
}

// Install writes the Run value.
func (w *windowsManager) Install(execPath, configPath string) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening Run key: %w", err)
	}
	defer k.Close()

	if err := k.SetStringValue(appName, commandLine(execPath, configPath)); err != nil {
		return fmt.Errorf("writing Run value: %w", err)
	}
	return nil
}

// Uninstall deletes the Run value.
func (w *windowsManager) Uninstall() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening Run key: %w", err)
	}
	defer k.Close()

	if err := k.DeleteValue(appName); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("deleting Run value: %w", err)
	}
	return nil
}
