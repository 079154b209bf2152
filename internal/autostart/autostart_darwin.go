//go:build darwin

package autostart

import (
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const serviceLabel = "com.lafms.collector"

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>com.lafms.collector</string>
    <key>ProgramArguments</key>
    <array>
{arguments}
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>LimitLoadToSessionType</key>
    <string>Aqua</string>
</dict>
</plist>
`

// darwinManager implements Manager with a per-user LaunchAgent.
type darwinManager struct {
	plistPath string
}

// New returns a Manager that writes ~/Library/LaunchAgents/com.lafms.collector.plist.
func New() Manager {
	home, _ := os.UserHomeDir()
	return &darwinManager{
		plistPath: filepath.Join(home, "Library", "LaunchAgents", serviceLabel+".plist"),
	}
}

// Location returns the plist path.
func (d *darwinManager) Location() string { return d.plistPath }

// IsInstalled checks whether the plist exists.
func (d *darwinManager) IsInstalled() (bool, error) {
	_, err := os.Stat(d.plistPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking plist file: %w", err)
	}
	return true, nil
}

// Install writes the LaunchAgent plist and loads it.
func (d *darwinManager) Install(execPath, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(d.plistPath), 0755); err != nil {
		return fmt.Errorf("creating LaunchAgents directory: %w", err)
	}
	args := []string{execPath}
	if configPath != "" {
		args = append(args, "-config", configPath)
	}
	var lines []string
	for _, a := range args {
		lines = append(lines, "        <string>"+html.EscapeString(a)+"</string>")
	}
	plist := strings.ReplaceAll(plistTemplate, "{arguments}", strings.Join(lines, "\n"))
	if err := os.WriteFile(d.plistPath, []byte(plist), 0644); err != nil {
		return fmt.Errorf("creating plist: %w", err)
	}
	if err := exec.Command("launchctl", "load", "-w", d.plistPath).Run(); err != nil {
		return fmt.Errorf("loading plist: %w", err)
	}
	return nil
}

// Uninstall unloads and removes the LaunchAgent.
func (d *darwinManager) Uninstall() error {
	_ = exec.Command("launchctl", "unload", d.plistPath).Run()
	if err := os.Remove(d.plistPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing plist: %w", err)
	}
	return nil
}
