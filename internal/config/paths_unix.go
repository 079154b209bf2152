//go:build !windows

package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	return []string{
		filepath.Join(home, ".lafms", "config.yaml"),
		"/etc/lafms/config.yaml",
	}
}
