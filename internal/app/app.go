// Package app wires the scheduler, the hotkey registry and capture, the
// collection pipeline and the run journal into one application object that
// the front end drives.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/lafms/internal/config"
	"github.com/Guliveer/lafms/internal/display"
	"github.com/Guliveer/lafms/internal/history"
	"github.com/Guliveer/lafms/internal/hotkey"
	"github.com/Guliveer/lafms/internal/input"
	"github.com/Guliveer/lafms/internal/models"
	"github.com/Guliveer/lafms/internal/platform"
	"github.com/Guliveer/lafms/internal/scheduler"
	"github.com/Guliveer/lafms/internal/task"
)

// recordTimeout bounds a single journal write.
const recordTimeout = 5 * time.Second

// Options configures an App. Config, Source, Collector and Logger are
// required.
type Options struct {
	// Config is the configuration without command-line overrides. It is the
	// layer that gets persisted.
	Config *config.Config
	// Overrides are the command-line values applied on top of Config. They
	// are never persisted.
	Overrides config.CLIOverrides
	// ConfigPath is where binding and interval changes are persisted.
	// Empty disables persistence.
	ConfigPath string

	Source    input.Source
	Collector scheduler.Collector
	Logger    *zap.Logger

	// Facility registers hotkeys. Nil selects a hook-based Matcher on Source.
	Facility hotkey.Facility
	// Sink receives progress and labels. Nil discards them.
	Sink display.Sink
	// History journals every collection attempt when set.
	History *history.Store
	// Platform enables keep-awake when set and the config asks for it.
	Platform platform.Platform
}

// Status is a point-in-time view of the application.
type Status struct {
	Scheduler scheduler.Status
	Bindings  map[hotkey.SlotID]string
	Capturing hotkey.SlotID
}

// App is the running application.
type App struct {
	logger     *zap.Logger
	configPath string
	history    *history.Store
	platform   platform.Platform
	source     input.Source
	matcher    *hotkey.Matcher

	sched    *scheduler.Scheduler
	registry *hotkey.Registry
	capturer *hotkey.Capturer

	mu        sync.Mutex
	cfg       config.Config
	overrides config.CLIOverrides
	bindGen   map[hotkey.SlotID]uint64
	loaded    *config.Config
	loadedGen map[hotkey.SlotID]uint64
	cancel    context.CancelFunc
	closed    bool
}

// New builds the App and binds the slots from the config. It does not start
// background work; call Start.
func New(opts Options) (*App, error) {
	if opts.Config == nil || opts.Source == nil || opts.Collector == nil || opts.Logger == nil {
		return nil, errors.New("app: config, source, collector and logger are required")
	}
	effective := *opts.Config
	opts.Overrides.Apply(&effective)
	if err := effective.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	sink := opts.Sink
	if sink == nil {
		sink = display.Nop{}
	}
	logger := opts.Logger

	a := &App{
		logger:     logger.Named("app"),
		configPath: opts.ConfigPath,
		history:    opts.History,
		platform:   opts.Platform,
		source:     opts.Source,
		cfg:        *opts.Config,
		overrides:  opts.Overrides,
		bindGen:    make(map[hotkey.SlotID]uint64),
	}

	sched, err := scheduler.New(opts.Collector, &task.Guard{}, task.NewFlag(true), sink, logger, scheduler.Options{
		Interval: a.effectiveInterval(opts.Config),
		Timeout:  opts.Config.Collection.Timeout.Duration,
	})
	if err != nil {
		return nil, err
	}
	a.sched = sched
	sched.OnRun(a.record)

	facility := opts.Facility
	if facility == nil {
		a.matcher = hotkey.NewMatcher(logger)
		if err := opts.Source.Hook(a.matcher); err != nil {
			return nil, fmt.Errorf("hook hotkey matcher: %w", err)
		}
		facility = a.matcher
	}

	a.registry = hotkey.NewRegistry(facility, sink, logger)
	a.registry.Define(hotkey.SlotManual, func() { a.sched.RunOnce(models.TriggerHotkey) })
	a.registry.Define(hotkey.SlotAutoToggle, func() { a.sched.Toggle() })
	a.capturer = hotkey.NewCapturer(opts.Source, a.registry, &task.Guard{}, sink, logger)

	a.bindFromConfig(opts.Config.Hotkeys, nil)
	a.registry.OnChange(a.persistBinding)
	return a, nil
}

// Start launches background work (keep-awake) bound to ctx.
func (a *App) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.cancel != nil {
		return
	}
	ctx, a.cancel = context.WithCancel(ctx)

	if a.platform != nil {
		platform.WarnIfNotElevated(a.platform, a.logger)
		if a.cfg.KeepAwake {
			task.Spawn(a.logger, "keep-awake", func(context.Context) {
				platform.RunKeepAwake(ctx, a.platform, platform.KeepAwakeInterval, a.logger)
			})
		}
	}
	a.logger.Info("Ready",
		zap.String("interval", scheduler.HumanizeInterval(a.sched.Interval())),
		zap.String("manual", a.label(hotkey.SlotManual)),
		zap.String("auto_toggle", a.label(hotkey.SlotAutoToggle)))
}

// RunOnce triggers a single manual collection.
func (a *App) RunOnce() {
	a.sched.RunOnce(models.TriggerManual)
}

// TogglePeriodic arms or stops periodic collection and reports whether it
// is now armed.
func (a *App) TogglePeriodic() bool {
	return a.sched.Toggle()
}

// SetInterval changes the periodic interval and persists it. It replaces a
// command-line interval. A running schedule picks it up the next time it is
// armed.
func (a *App) SetInterval(d time.Duration) error {
	if err := a.sched.SetInterval(d); err != nil {
		return err
	}
	a.mu.Lock()
	a.cfg.Collection.Interval = config.Duration{Duration: d}
	a.overrides.Interval = 0
	a.mu.Unlock()
	a.persist()
	return nil
}

// Rebind starts capturing a new chord for slot. It returns false if another
// capture is in progress.
func (a *App) Rebind(slot hotkey.SlotID) bool {
	return a.capturer.Rebind(slot)
}

// OnCaptureDone sets the observer for finished capture sessions.
func (a *App) OnCaptureDone(fn func(hotkey.Outcome)) {
	a.capturer.OnDone(fn)
}

// Status returns the current state.
func (a *App) Status() Status {
	st := Status{
		Scheduler: a.sched.Status(),
		Bindings:  make(map[hotkey.SlotID]string),
	}
	for _, id := range a.registry.Slots() {
		st.Bindings[id] = a.label(id)
	}
	if slot, ok := a.capturer.Active(); ok {
		st.Capturing = slot
	}
	return st
}

// Loader wraps load for config reloads. It records which bindings were
// current when the file was read so that ApplyConfig leaves alone any slot
// rebound since then.
func (a *App) Loader(load func() (*config.Config, error)) func() (*config.Config, error) {
	return func() (*config.Config, error) {
		a.mu.Lock()
		gens := make(map[hotkey.SlotID]uint64, len(a.bindGen))
		for id, g := range a.bindGen {
			gens[id] = g
		}
		a.mu.Unlock()

		cfg, err := load()
		if err != nil {
			return nil, err
		}
		a.mu.Lock()
		a.loaded, a.loadedGen = cfg, gens
		a.mu.Unlock()
		return cfg, nil
	}
}

// ApplyConfig applies a reloaded config: a changed interval (next arming)
// and changed hotkey bindings. Command-line overrides stay in effect. Other
// settings need a restart.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	var stale map[hotkey.SlotID]bool
	if cfg == a.loaded {
		for id, g := range a.bindGen {
			if g != a.loadedGen[id] {
				if stale == nil {
					stale = make(map[hotkey.SlotID]bool)
				}
				stale[id] = true
			}
		}
	}
	next := *cfg
	for id := range stale {
		setBinding(&next.Hotkeys, id, binding(a.cfg.Hotkeys, id))
	}
	a.cfg = next
	interval := a.effectiveInterval(&next)
	a.mu.Unlock()

	if interval != a.sched.Interval() {
		if err := a.sched.SetInterval(interval); err != nil {
			a.logger.Warn("Ignoring reloaded interval", zap.Error(err))
		}
	}
	a.bindFromConfig(next.Hotkeys, stale)
}

// Close shuts everything down: it cancels an active capture, unregisters
// hotkeys, stops periodic collection and background work. An in-flight
// collection is left to finish. Close is idempotent.
func (a *App) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	cancel := a.cancel
	a.mu.Unlock()

	a.capturer.Close()
	a.registry.Close()
	if a.matcher != nil {
		a.source.Unhook(a.matcher)
	}
	a.sched.Close()
	if cancel != nil {
		cancel()
	}
	a.logger.Info("Stopped")
}

// bindFromConfig binds every slot to its chord in h, except the slot being
// captured and the slots in skip.
func (a *App) bindFromConfig(h config.HotkeysConfig, skip map[hotkey.SlotID]bool) {
	for _, id := range a.registry.Slots() {
		if skip[id] {
			a.logger.Debug("Binding changed after config was read, keeping it", zap.String("slot", string(id)))
			continue
		}
		if active, ok := a.capturer.Active(); ok && active == id {
			continue
		}
		want := binding(h, id)
		chord := hotkey.ParseChord(want)
		if current, _ := a.registry.Chord(id); current.Equal(chord) {
			continue
		}
		if err := a.registry.Bind(id, chord); err != nil {
			a.logger.Warn("Cannot bind hotkey from config",
				zap.String("slot", string(id)),
				zap.String("chord", want),
				zap.Error(err))
		}
	}
}

func (a *App) label(id hotkey.SlotID) string {
	c, _ := a.registry.Chord(id)
	return hotkey.Label(c)
}

// effectiveInterval is cfg's interval unless the command line set one.
// Callers hold a.mu or own a.
func (a *App) effectiveInterval(cfg *config.Config) time.Duration {
	if a.overrides.Interval != 0 {
		return a.overrides.Interval
	}
	return cfg.Collection.Interval.Duration
}

func binding(h config.HotkeysConfig, id hotkey.SlotID) string {
	switch id {
	case hotkey.SlotManual:
		return h.Manual
	case hotkey.SlotAutoToggle:
		return h.AutoToggle
	}
	return ""
}

func setBinding(h *config.HotkeysConfig, id hotkey.SlotID, chord string) {
	switch id {
	case hotkey.SlotManual:
		h.Manual = chord
	case hotkey.SlotAutoToggle:
		h.AutoToggle = chord
	}
}

// persistBinding saves a slot's new chord. The slot's generation is bumped
// after the write, so a reload that read the file before it is detected.
func (a *App) persistBinding(id hotkey.SlotID, chord hotkey.Chord) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	setBinding(&a.cfg.Hotkeys, id, chord.ID())
	a.mu.Unlock()
	a.persist()

	a.mu.Lock()
	a.bindGen[id]++
	a.mu.Unlock()
}

func (a *App) persist() {
	if a.configPath == "" {
		return
	}
	a.mu.Lock()
	cfg := a.cfg
	a.mu.Unlock()
	if err := config.WriteConfig(&cfg, a.configPath); err != nil {
		a.logger.Error("Failed to save config", zap.String("path", a.configPath), zap.Error(err))
	}
}

func (a *App) record(r models.RunReport) {
	if a.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := a.history.Record(ctx, r); err != nil {
		a.logger.Debug("Failed to journal run", zap.String("run", r.ID), zap.Error(err))
	}
}
