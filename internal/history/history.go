// Package history keeps a SQLite journal of every collection attempt,
// including attempts dropped because another collection was running.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Guliveer/lafms/internal/models"
)

//go:embed schema.sql
var schema string

// timeLayout is fixed-width so that start times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrClosed is returned after Close.
var ErrClosed = errors.New("history store closed")

// Store is the run journal.
type Store struct {
	logger *zap.Logger

	// mu guards db; Close waits for in-flight queries.
	mu sync.RWMutex
	db *sql.DB
}

// Open opens or creates the journal at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA busy_timeout = 5000")
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return &Store{db: db, logger: logger.Named("history")}, nil
}

// Record appends one report. Recording the same run ID twice replaces it.
func (s *Store) Record(ctx context.Context, r models.RunReport) error {
	if s == nil {
		return ErrClosed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}
	if r.Started.IsZero() {
		r.Started = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(id, trigger_kind, started, duration_ms, outcome, error)
		 VALUES(?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
		   trigger_kind=excluded.trigger_kind, started=excluded.started,
		   duration_ms=excluded.duration_ms, outcome=excluded.outcome, error=excluded.error`,
		r.ID, string(r.Trigger), r.Started.UTC().Format(timeLayout),
		r.Duration.Milliseconds(), string(r.Outcome), nullStr(r.Error),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// Recent returns up to limit reports, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.RunReport, error) {
	if s == nil {
		return nil, ErrClosed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trigger_kind, started, duration_ms, outcome, error
		 FROM runs ORDER BY started DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []models.RunReport
	for rows.Next() {
		var (
			r       models.RunReport
			trigger string
			started string
			ms      int64
			outcome string
			errText sql.NullString
		)
		if err := rows.Scan(&r.ID, &trigger, &started, &ms, &outcome, &errText); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Trigger = models.Trigger(trigger)
		r.Outcome = models.Outcome(outcome)
		r.Duration = time.Duration(ms) * time.Millisecond
		r.Error = errText.String
		if r.Started, err = time.Parse(timeLayout, started); err != nil {
			s.logger.Warn("Unparseable run start", zap.String("run", r.ID), zap.String("started", started))
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database. It is safe to call more than once.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
