//go:build linux

package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// desktopTemplate is the XDG autostart entry written during installation.
const desktopTemplate = `[Desktop Entry]
Type=Application
Name=lafms
Comment=Market screen collector with global hotkeys
Exec={command}
Terminal=false
X-GNOME-Autostart-enabled=true
`

// linuxManager implements Manager with an XDG autostart desktop entry.
type linuxManager struct {
	path string
}

// New returns a Manager that writes $XDG_CONFIG_HOME/autostart/lafms.desktop.
func New() Manager {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return &linuxManager{path: filepath.Join(dir, "autostart", appName+".desktop")}
}

// Location returns the desktop entry path.
func (l *linuxManager) Location() string { return l.path }

// IsInstalled checks whether the desktop entry exists.
func (l *linuxManager) IsInstalled() (bool, error) {
	_, err := os.Stat(l.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking desktop entry: %w", err)
	}
	return true, nil
}

// Install writes the desktop entry.
func (l *linuxManager) Install(execPath, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("creating autostart directory: %w", err)
	}
	entry := strings.ReplaceAll(desktopTemplate, "{command}", commandLine(execPath, configPath))
	if err := os.WriteFile(l.path, []byte(entry), 0644); err != nil {
		return fmt.Errorf("writing desktop entry: %w", err)
	}
	return nil
}

// Uninstall removes the desktop entry.
func (l *linuxManager) Uninstall() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing desktop entry: %w", err)
	}
	return nil
}
