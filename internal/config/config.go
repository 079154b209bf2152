// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file > embedded > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Guliveer/lafms/internal/scheduler"
)

// Hotkey backends.
const (
	BackendHook   = "hook"
	BackendSystem = "system"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "10m", "1h".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all configuration.
type Config struct {
	Collection CollectionConfig `yaml:"collection"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Hotkeys    HotkeysConfig    `yaml:"hotkeys"`
	History    HistoryConfig    `yaml:"history"`
	Logging    LoggingConfig    `yaml:"logging"`
	KeepAwake  bool             `yaml:"keep_awake"`
}

// CollectionConfig holds collection and scheduling settings.
type CollectionConfig struct {
	Interval    Duration `yaml:"interval"`
	Timeout     Duration `yaml:"timeout"`
	GameProcess string   `yaml:"game_process"`
	Region      Region   `yaml:"region"`
	OCRCommand  []string `yaml:"ocr_command"`
}

// Region is the captured screen rectangle. Zero width or height means the
// whole primary display.
type Region struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ArchiveConfig holds artifact storage settings.
type ArchiveConfig struct {
	Dir       string `yaml:"dir"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// HotkeysConfig holds the hotkey backend and the persisted slot bindings.
// Bindings are chord IDs such as "ctrl+shift+s"; "" means unbound.
type HotkeysConfig struct {
	Backend    string `yaml:"backend"`
	Manual     string `yaml:"manual"`
	AutoToggle string `yaml:"auto_toggle"`
}

// HistoryConfig holds run journal settings.
type HistoryConfig struct {
	DBPath string `yaml:"db_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Collection: CollectionConfig{
			Interval: Duration{scheduler.AllowedIntervals[0]},
			Timeout:  Duration{2 * time.Minute},
		},
		Archive: ArchiveConfig{
			Dir:       "./archive",
			MaxSizeMB: 512,
		},
		Hotkeys: HotkeysConfig{
			Backend: BackendHook,
		},
		History: HistoryConfig{
			DBPath: "./history.db",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "./logs",
		},
		KeepAwake: true,
	}
}

// Parse parses YAML configuration over the defaults. No overrides are applied.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}
	return cfg, nil
}

// CLIOverrides holds values from command-line flags.
// Zero values are treated as "not set" and skipped.
type CLIOverrides struct {
	Interval time.Duration
	LogLevel string
}

// Apply sets the non-zero overrides on cfg.
func (o CLIOverrides) Apply(cfg *Config) {
	if o.Interval != 0 {
		cfg.Collection.Interval = Duration{o.Interval}
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultPath is where a config file is written when none was found.
func DefaultPath() string {
	return configSearchPaths()[0]
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no external file)
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg, err := Parse(embedded)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}

	var filePath string
	if len(configPath) > 0 {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cli.Apply(cfg)
	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed. The file is replaced atomically so
// a concurrent watcher never parses a partial write.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0640); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies LAFMS_* environment variable overrides.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LAFMS_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LAFMS_INTERVAL: %w", err)
		}
		cfg.Collection.Interval = Duration{d}
	}
	if v := os.Getenv("LAFMS_GAME_PROCESS"); v != "" {
		cfg.Collection.GameProcess = v
	}
	if v := os.Getenv("LAFMS_ARCHIVE_DIR"); v != "" {
		cfg.Archive.Dir = v
	}
	if v := os.Getenv("LAFMS_HOTKEY_BACKEND"); v != "" {
		cfg.Hotkeys.Backend = v
	}
	if v := os.Getenv("LAFMS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

// Validate checks that the configuration can be used.
func (c *Config) Validate() error {
	if !scheduler.ValidInterval(c.Collection.Interval.Duration) {
		return fmt.Errorf("collection.interval %s: %w", c.Collection.Interval.Duration, scheduler.ErrInvalidInterval)
	}
	if c.Collection.Timeout.Duration < 0 {
		return fmt.Errorf("collection.timeout must not be negative (got: %s)", c.Collection.Timeout.Duration)
	}
	r := c.Collection.Region
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("collection.region must not have a negative size (got: %dx%d)", r.Width, r.Height)
	}
	switch c.Hotkeys.Backend {
	case BackendHook, BackendSystem:
	default:
		return fmt.Errorf("hotkeys.backend must be %q or %q (got: %q)", BackendHook, BackendSystem, c.Hotkeys.Backend)
	}
	if _, err := zap.ParseAtomicLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if strings.TrimSpace(c.Archive.Dir) == "" {
		return fmt.Errorf("archive.dir is required")
	}
	if c.Archive.MaxSizeMB < 0 {
		return fmt.Errorf("archive.max_size_mb must not be negative (got: %d)", c.Archive.MaxSizeMB)
	}
	return nil
}
