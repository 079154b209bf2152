// Package autostart starts lafms when the user logs in. Global input hooks
// only work inside a desktop session, so lafms is registered per user rather
// than as a system service.
package autostart

import "strings"

// appName identifies the autostart entry on every platform.
const appName = "lafms"

// Manager provides platform-specific login autostart.
type Manager interface {
	IsInstalled() (bool, error)
	Install(execPath, configPath string) error
	Uninstall() error
	Location() string
}

// commandLine renders the command the session starts, quoting paths that
// contain spaces.
func commandLine(execPath, configPath string) string {
	parts := []string{quote(execPath)}
	if configPath != "" {
		parts = append(parts, "-config", quote(configPath))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}
