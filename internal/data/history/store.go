package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"codefacts/internal/core/ports"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Store keeps one row per extraction run so watch mode can be inspected
// after the fact. A single connection avoids writer contention entirely.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// RecordRun upserts a run summary. Replays of the same run ID (retries
// after a transient failure) overwrite the earlier row.
func (s *Store) RecordRun(run ports.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(run.RunID) == "" {
		return fmt.Errorf("run id must not be empty")
	}

	query := `
INSERT INTO runs (
  run_id, baseline_revision, current_revision, files_scanned, files_failed,
  fact_count, added, removed, modified, duration_ms, created_at_utc
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
  baseline_revision=excluded.baseline_revision,
  current_revision=excluded.current_revision,
  files_scanned=excluded.files_scanned,
  files_failed=excluded.files_failed,
  fact_count=excluded.fact_count,
  added=excluded.added,
  removed=excluded.removed,
  modified=excluded.modified,
  duration_ms=excluded.duration_ms,
  created_at_utc=excluded.created_at_utc
`
	return s.withRetry("record run", func() error {
		_, err := s.db.Exec(
			query,
			run.RunID,
			run.BaselineRevision,
			run.CurrentRevision,
			run.FilesScanned,
			run.FilesFailed,
			run.FactCount,
			run.Added,
			run.Removed,
			run.Modified,
			run.DurationMillis,
			time.Now().UTC().Format(time.RFC3339Nano),
		)
		return err
	})
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means
// no limit.
func (s *Store) ListRuns(limit int) ([]ports.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT
  run_id, baseline_revision, current_revision, files_scanned, files_failed,
  fact_count, added, removed, modified, duration_ms
FROM runs
ORDER BY created_at_utc DESC, run_id DESC
`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows *sql.Rows
	err := s.withRetry("list runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]ports.RunSummary, 0)
	for rows.Next() {
		var run ports.RunSummary
		if err := rows.Scan(
			&run.RunID,
			&run.BaselineRevision,
			&run.CurrentRevision,
			&run.FilesScanned,
			&run.FilesFailed,
			&run.FactCount,
			&run.Added,
			&run.Removed,
			&run.Modified,
			&run.DurationMillis,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
