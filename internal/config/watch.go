package config

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	watchDebounce      = 250 * time.Millisecond
	restartBackoffBase = 250 * time.Millisecond
	restartBackoffMax  = 5 * time.Second
)

// Watch observes the config file at path and, after a short debounce, calls
// load and hands every valid, changed config to onChange. Invalid configs are
// logged and skipped. The directory is watched rather than the file so that
// editors that replace the file are handled. If the watcher fails it is
// recreated with backoff. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, load func() (*Config, error), onChange func(*Config), logger *zap.Logger) error {
	logger = logger.Named("config-watch")
	dir := filepath.Dir(path)
	file := filepath.Base(path)

	var (
		mu    sync.Mutex
		timer *time.Timer
		last  []byte
	)
	if cfg, err := load(); err == nil {
		last, _ = yaml.Marshal(cfg)
	}

	reload := func() {
		cfg, err := load()
		if err != nil {
			logger.Warn("Config parse failed", zap.String("path", path), zap.Error(err))
			return
		}
		if err := cfg.Validate(); err != nil {
			logger.Warn("Config rejected", zap.String("path", path), zap.Error(err))
			return
		}
		data, _ := yaml.Marshal(cfg)
		mu.Lock()
		unchanged := bytes.Equal(data, last)
		if !unchanged {
			last = data
		}
		mu.Unlock()
		if unchanged {
			logger.Debug("Config unchanged, skipping", zap.String("path", path))
			return
		}
		logger.Info("Config reloaded", zap.String("path", path))
		onChange(cfg)
	}
	debounce := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, reload)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	backoff := restartBackoffBase
	for {
		if ctx.Err() != nil {
			return nil
		}
		healthy, err := watchOnce(ctx, dir, file, debounce, logger)
		if err != nil {
			logger.Warn("Config watch failed", zap.String("dir", dir), zap.Error(err))
		}
		if healthy {
			backoff = restartBackoffBase
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < restartBackoffMax {
			backoff *= 2
			if backoff > restartBackoffMax {
				backoff = restartBackoffMax
			}
		}
	}
}

// watchOnce runs one fsnotify watcher until ctx is done or the watcher
// breaks. healthy reports whether the watcher was established.
func watchOnce(ctx context.Context, dir, file string, changed func(), logger *zap.Logger) (healthy bool, err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return false, err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return false, err
	}
	logger.Debug("Watching config", zap.String("dir", dir), zap.String("file", file))

	for {
		select {
		case <-ctx.Done():
			return true, nil
		case ev, ok := <-w.Events:
			if !ok {
				return true, nil
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				changed()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return true, nil
			}
			return true, err
		}
	}
}
