// Package main is the entry point for lafms, the market-screen collector.
// It loads configuration, wires the collection pipeline, the scheduler and
// the global hotkeys, and runs a small stdin console until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Guliveer/lafms/internal/app"
	"github.com/Guliveer/lafms/internal/autostart"
	"github.com/Guliveer/lafms/internal/config"
	"github.com/Guliveer/lafms/internal/display"
	"github.com/Guliveer/lafms/internal/history"
	"github.com/Guliveer/lafms/internal/hotkey"
	"github.com/Guliveer/lafms/internal/hotkey/system"
	"github.com/Guliveer/lafms/internal/input"
	"github.com/Guliveer/lafms/internal/input/gohook"
	"github.com/Guliveer/lafms/internal/platform"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	configPath  = flag.String("config", "", "Path to configuration file (default: auto-discover)")
	showVersion = flag.Bool("version", false, "Show version and exit")
	showHistory = flag.Int("history", 0, "Print the last N collection runs and exit")
	interval    = flag.Duration("interval", 0, "Periodic collection interval (overrides config)")
	autostartOp = flag.String("autostart", "", "Manage start at login: on, off or status")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("lafms %s\n", version)
		os.Exit(0)
	}

	// Resolve the config file; bindings are persisted to it.
	path := *configPath
	if path == "" {
		path = config.Locate()
	}
	// base is what gets persisted; cfg adds the command-line overrides.
	overrides := config.CLIOverrides{Interval: *interval}
	base, err := config.LoadLayered(config.CLIOverrides{}, embeddedConfig, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if path == "" {
		path = config.DefaultPath()
	}
	cfg := *base
	overrides.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(&cfg)
	defer logger.Sync()

	if *autostartOp != "" {
		if err := manageAutostart(*autostartOp, path); err != nil {
			fmt.Fprintf(os.Stderr, "autostart: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *showHistory > 0 {
		if err := printHistory(&cfg, *showHistory, logger); err != nil {
			logger.Fatal("Failed to read history", zap.Error(err))
		}
		return
	}

	logger.Info("Starting lafms",
		zap.String("version", version),
		zap.String("config", path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := run(ctx, cancel, base, overrides, path, logger); err != nil {
		logger.Fatal("Startup failed", zap.Error(err))
	}
	logger.Info("lafms stopped")
}

// run wires every component and blocks until ctx is cancelled or the console
// asks to quit.
func run(ctx context.Context, cancel context.CancelFunc, base *config.Config, overrides config.CLIOverrides, path string, logger *zap.Logger) error {
	cfg := *base
	overrides.Apply(&cfg)

	pipeline, arch, err := app.NewPipeline(&cfg, logger)
	if err != nil {
		return fmt.Errorf("collection pipeline: %w", err)
	}
	logger.Info("Archive ready", zap.String("dir", arch.Dir()), zap.Int("artifacts", arch.Count()))

	hist, err := history.Open(cfg.History.DBPath, logger)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer hist.Close()

	hub := input.NewHub()
	defer hub.Close()

	var facility hotkey.Facility
	if cfg.Hotkeys.Backend == config.BackendSystem {
		sys := system.New(logger)
		defer sys.Close()
		facility = sys
	}

	a, err := app.New(app.Options{
		Config:     base,
		Overrides:  overrides,
		ConfigPath: path,
		Source:     hub,
		Collector:  pipeline,
		Logger:     logger,
		Facility:   facility,
		Sink:       display.NewLogSink(logger),
		History:    hist,
		Platform:   platform.New(),
	})
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.WriteConfig(base, path); err != nil {
			logger.Warn("Cannot create config file, bindings will not persist", zap.String("path", path), zap.Error(err))
		} else {
			logger.Info("Created config file", zap.String("path", path))
		}
	}
	a.OnCaptureDone(func(o hotkey.Outcome) {
		fmt.Printf("%s: %s (%s)\n", o.Slot, hotkey.Label(o.Chord), o.State)
	})

	go gohook.Run(ctx, hub, logger)
	go func() {
		load := a.Loader(func() (*config.Config, error) {
			return config.LoadLayered(config.CLIOverrides{}, embeddedConfig, path)
		})
		if err := config.Watch(ctx, path, load, a.ApplyConfig, logger); err != nil {
			logger.Warn("Config watch stopped", zap.Error(err))
		}
	}()
	go func() {
		if runConsole(os.Stdin, os.Stdout, a) {
			logger.Info("Quit requested")
			cancel()
		}
	}()

	a.Start(ctx)
	<-ctx.Done()
	return nil
}

func manageAutostart(op, configPath string) error {
	m := autostart.New()
	switch op {
	case "on":
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolving executable: %w", err)
		}
		if abs, err := filepath.Abs(configPath); err == nil {
			configPath = abs
		}
		if err := m.Install(exe, configPath); err != nil {
			return err
		}
		fmt.Printf("autostart enabled (%s)\n", m.Location())
	case "off":
		if err := m.Uninstall(); err != nil {
			return err
		}
		fmt.Println("autostart disabled")
	case "status":
		installed, err := m.IsInstalled()
		if err != nil {
			return err
		}
		fmt.Printf("autostart installed: %v (%s)\n", installed, m.Location())
	default:
		return fmt.Errorf("unknown operation %q, want on, off or status", op)
	}
	return nil
}

func printHistory(cfg *config.Config, n int, logger *zap.Logger) error {
	hist, err := history.Open(cfg.History.DBPath, logger)
	if err != nil {
		return err
	}
	defer hist.Close()

	runs, err := hist.Recent(context.Background(), n)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tTRIGGER\tOUTCOME\tTOOK\tERROR")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.Started.Local().Format(time.DateTime), r.Trigger, r.Outcome,
			r.Duration.Round(time.Millisecond), r.Error)
	}
	return w.Flush()
}

// initLogger creates a zap logger based on the configuration.
// It outputs to both console (human-readable) and a JSON log file named
// lafms-<start time>.log in the configured directory.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Console output (human-readable)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	// File output (structured JSON, if configured)
	if cfg.Logging.Dir != "" {
		if err := os.MkdirAll(cfg.Logging.Dir, 0750); err == nil {
			name := fmt.Sprintf("lafms-%s.log", time.Now().Format("20060102-150405"))
			file, err := os.OpenFile(filepath.Join(cfg.Logging.Dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
			if err == nil {
				cores = append(cores, zapcore.NewCore(
					zapcore.NewJSONEncoder(encoderConfig),
					zapcore.AddSync(file),
					level,
				))
			}
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
