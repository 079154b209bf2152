// Package archive stores the artifacts of each collection run (screenshots,
// OCR output) as files in a local directory. The directory is capped in size;
// when the cap is reached the oldest artifacts are removed first.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const timeLayout = "20060102T150405.000"

// Archive is a size-capped artifact directory.
type Archive struct {
	dir      string
	maxBytes int64
	logger   *zap.Logger
	mu       sync.Mutex
}

// New opens the archive at dir, creating it if needed. maxSizeMB <= 0
// disables the size cap.
func New(dir string, maxSizeMB int, logger *zap.Logger) (*Archive, error) {
	return newArchive(dir, int64(maxSizeMB)*1024*1024, logger)
}

func newArchive(dir string, maxBytes int64, logger *zap.Logger) (*Archive, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Archive{
		dir:      dir,
		maxBytes: maxBytes,
		logger:   logger.Named("archive"),
	}, nil
}

// Dir returns the archive directory.
func (a *Archive) Dir() string { return a.dir }

// Store writes one artifact for runID. The file is named
// <timestamp>-<runID>-<name> so directory order is chronological. write
// receives the file contents' destination; if it fails nothing is kept.
func (a *Archive) Store(runID, name string, write func(io.Writer) error) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.enforceLimit()

	filename := fmt.Sprintf("%s-%s-%s", time.Now().UTC().Format(timeLayout), runID, sanitize(name))
	path := filepath.Join(a.dir, filename)

	tmp, err := os.CreateTemp(a.dir, ".partial-*")
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write artifact %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close artifact %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("commit artifact %s: %w", name, err)
	}

	a.logger.Debug("Stored artifact", zap.String("file", path))
	return path, nil
}

// Files returns the stored artifact paths, oldest first.
func (a *Archive) Files() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	entries := a.entries()
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = filepath.Join(a.dir, e.Name())
	}
	return paths
}

// Count returns the number of stored artifacts.
func (a *Archive) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries())
}

// entries lists artifact files in name order. Must be called with a.mu held.
func (a *Archive) entries() []os.DirEntry {
	all, err := os.ReadDir(a.dir)
	if err != nil {
		return nil
	}
	var out []os.DirEntry
	for _, e := range all {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// enforceLimit removes the oldest artifacts until the archive is under its
// cap. Must be called with a.mu held.
func (a *Archive) enforceLimit() {
	if a.maxBytes <= 0 {
		return
	}
	entries := a.entries()
	var total int64
	sizes := make([]int64, len(entries))
	for i, e := range entries {
		if info, err := e.Info(); err == nil {
			sizes[i] = info.Size()
			total += sizes[i]
		}
	}
	for i := 0; total >= a.maxBytes && i < len(entries); i++ {
		path := filepath.Join(a.dir, entries[i].Name())
		if err := os.Remove(path); err != nil {
			a.logger.Warn("Failed to remove oldest artifact", zap.String("file", path), zap.Error(err))
			continue
		}
		a.logger.Warn("Archive full, dropped oldest artifact", zap.String("file", path))
		total -= sizes[i]
	}
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, name)
}
