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
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"rewatch/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by another schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store persists runs and checks in SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates or opens the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "history", "open", "create directory", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "history", "open", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrPersistence, "history", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// BeginRun inserts a running run. An empty ID is assigned.
func (s *Store) BeginRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = s.now().UTC()
	}
	run.Status = StatusRunning
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, kind, status, dry_run, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		run.Kind,
		run.Status,
		boolToInt(run.DryRun),
		formatTime(run.StartedAt),
	)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "history", "begin run", run.ID, err)
	}
	return nil
}

// FinishRun records the final status and counts. A non-nil runErr marks the
// run failed.
func (s *Store) FinishRun(ctx context.Context, run *Run, runErr error) error {
	if run == nil {
		return errors.New("run is nil")
	}
	finished := s.now().UTC()
	run.FinishedAt = &finished
	run.Status = StatusCompleted
	if runErr != nil {
		run.Status = StatusFailed
		run.Error = runErr.Error()
	}
	c := run.Counts
	_, err := s.execWithRetry(ctx,
		`UPDATE runs
         SET status = ?, finished_at = ?, processed = ?, added = ?, updated = ?, known = ?,
             not_found = ?, unresolved = ?, skipped = ?, error_message = ?
         WHERE id = ?`,
		run.Status,
		formatTime(finished),
		c.Processed,
		c.Added,
		c.Updated,
		c.Known,
		c.NotFound,
		c.Unresolved,
		c.Skipped,
		nullableString(run.Error),
		run.ID,
	)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "history", "finish run", run.ID, err)
	}
	return nil
}

// RecordChecks inserts checks in one transaction.
func (s *Store) RecordChecks(ctx context.Context, checks []Check) error {
	if len(checks) == 0 {
		return nil
	}
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO checks (
                run_id, entry_id, title, outcome, services, rent_buy,
                matched_title, matched_year, error_message, checked_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, check := range checks {
			checkedAt := check.CheckedAt
			if checkedAt.IsZero() {
				checkedAt = s.now()
			}
			if _, err := stmt.ExecContext(ctx,
				check.RunID,
				check.EntryID,
				check.Title,
				check.Outcome,
				nullableString(joinList(check.Services)),
				nullableString(joinList(check.RentBuy)),
				nullableString(check.MatchedTitle),
				nullableInt(check.MatchedYear),
				nullableString(check.Error),
				formatTime(checkedAt),
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return services.Wrap(services.ErrPersistence, "history", "record checks", fmt.Sprintf("%d checks", len(checks)), err)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "history", "list runs", "", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, "history", "list runs", "scan", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches one run. A missing run returns nil without error.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "history", "get run", id, err)
	}
	return &run, nil
}

// ChecksForRun lists a run's checks in insertion order.
func (s *Store) ChecksForRun(ctx context.Context, runID string) ([]Check, error) {
	return s.queryChecks(ctx, `SELECT `+checkColumns+` FROM checks WHERE run_id = ? ORDER BY id`, runID)
}

// ChecksForEntry lists an entry's checks, newest first.
func (s *Store) ChecksForEntry(ctx context.Context, entryID string, limit int) ([]Check, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryChecks(ctx, `SELECT `+checkColumns+` FROM checks WHERE entry_id = ? ORDER BY checked_at DESC, id DESC LIMIT ?`, entryID, limit)
}

func (s *Store) queryChecks(ctx context.Context, query string, args ...any) ([]Check, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "history", "query checks", "", err)
	}
	defer rows.Close()

	var checks []Check
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, "history", "query checks", "scan", err)
		}
		checks = append(checks, check)
	}
	return checks, rows.Err()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "history", "schema", "check schema_version table", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return services.Wrap(services.ErrPersistence, "history", "schema", "read schema version", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset history)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
