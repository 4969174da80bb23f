// Package journal keeps an SQLite history of batch runs and of every item they
// attempted.
//
// The journal is informational. Whether an item is imported is decided by the
// progress logs alone; deleting the journal file loses history, nothing else.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vvka-141/asdbload/pkg/asdb"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteJournal implements asdb.Journal on an SQLite file.
type SQLiteJournal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal at path and migrates its schema.
// Errors wrap asdb.ErrJournal.
func Open(path string) (*SQLiteJournal, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("%w: %w", asdb.ErrJournal, err)
			}
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", asdb.ErrJournal, path, err)
	}
	// One connection: the journal is written by a single batch, and an in-memory
	// database exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", asdb.ErrJournal, err)
	}

	return &SQLiteJournal{db: db}, nil
}

// Close closes the database connection
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// StartRun inserts a run in its initial state.
func (j *SQLiteJournal) StartRun(ctx context.Context, run asdb.RunRecord) error {
	if run.Status == "" {
		run.Status = asdb.RunRunning
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, input_dir, started_at, status)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.InputDir, run.StartedAt.UTC().Format(timeLayout), string(run.Status))
	if err != nil {
		return fmt.Errorf("%w: start run %s: %w", asdb.ErrJournal, run.ID, err)
	}
	return nil
}

// RecordItem appends one attempted item to a run.
func (j *SQLiteJournal) RecordItem(ctx context.Context, item asdb.ItemRecord) error {
	recordedAt := item.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO items (run_id, path, identifier, checksum, outcome, exit_code, duration_ms, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.RunID,
		item.Path,
		item.Identifier,
		item.Checksum,
		string(item.Outcome),
		item.ExitCode,
		item.Duration.Milliseconds(),
		item.Error,
		recordedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("%w: record item %s: %w", asdb.ErrJournal, item.Path, err)
	}
	return nil
}

// FinishRun stores the final counters and status of a run.
func (j *SQLiteJournal) FinishRun(ctx context.Context, run asdb.RunRecord) error {
	finishedAt := time.Now()
	if run.FinishedAt != nil {
		finishedAt = *run.FinishedAt
	}
	res, err := j.db.ExecContext(ctx, `
		UPDATE runs SET
			finished_at = ?,
			status = ?,
			discovered = ?,
			excluded = ?,
			skipped = ?,
			imported = ?,
			failed = ?,
			error = ?
		WHERE id = ?
	`,
		finishedAt.UTC().Format(timeLayout),
		string(run.Status),
		run.Discovered,
		run.Excluded,
		run.Skipped,
		run.Imported,
		run.Failed,
		run.Error,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: finish run %s: %w", asdb.ErrJournal, run.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: finish run %s: no such run", asdb.ErrJournal, run.ID)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first. A limit <= 0 returns all runs.
func (j *SQLiteJournal) RecentRuns(ctx context.Context, limit int) ([]asdb.RunRecord, error) {
	query := `SELECT id, input_dir, started_at, finished_at, status, discovered, excluded, skipped, imported, failed, error
		FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list runs: %w", asdb.ErrJournal, err)
	}
	defer rows.Close()

	var runs []asdb.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: list runs: %w", asdb.ErrJournal, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list runs: %w", asdb.ErrJournal, err)
	}
	return runs, nil
}

// Items returns the items recorded for a run in the order they were attempted.
func (j *SQLiteJournal) Items(ctx context.Context, runID string) ([]asdb.ItemRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, path, identifier, checksum, outcome, exit_code, duration_ms, error, recorded_at
		FROM items WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("%w: list items: %w", asdb.ErrJournal, err)
	}
	defer rows.Close()

	var items []asdb.ItemRecord
	for rows.Next() {
		var (
			item       asdb.ItemRecord
			outcome    string
			durationMs int64
			recordedAt string
		)
		if err := rows.Scan(&item.RunID, &item.Path, &item.Identifier, &item.Checksum, &outcome,
			&item.ExitCode, &durationMs, &item.Error, &recordedAt); err != nil {
			return nil, fmt.Errorf("%w: list items: %w", asdb.ErrJournal, err)
		}
		item.Outcome = asdb.Outcome(outcome)
		item.Duration = time.Duration(durationMs) * time.Millisecond
		if item.RecordedAt, err = time.Parse(timeLayout, recordedAt); err != nil {
			return nil, fmt.Errorf("%w: list items: %w", asdb.ErrJournal, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list items: %w", asdb.ErrJournal, err)
	}
	return items, nil
}

func scanRun(rows *sql.Rows) (asdb.RunRecord, error) {
	var (
		run        asdb.RunRecord
		startedAt  string
		finishedAt sql.NullString
		status     string
	)
	err := rows.Scan(&run.ID, &run.InputDir, &startedAt, &finishedAt, &status,
		&run.Discovered, &run.Excluded, &run.Skipped, &run.Imported, &run.Failed, &run.Error)
	if err != nil {
		return run, err
	}
	run.Status = asdb.RunStatus(status)
	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return run, err
	}
	if finishedAt.Valid {
		t, err := time.Parse(timeLayout, finishedAt.String)
		if err != nil {
			return run, err
		}
		run.FinishedAt = &t
	}
	return run, nil
}

// NullJournal discards everything. It stands in when the journal is disabled.
type NullJournal struct{}

// NewNullJournal creates a NullJournal.
func NewNullJournal() *NullJournal {
	return &NullJournal{}
}

func (NullJournal) StartRun(context.Context, asdb.RunRecord) error    { return nil }
func (NullJournal) RecordItem(context.Context, asdb.ItemRecord) error { return nil }
func (NullJournal) FinishRun(context.Context, asdb.RunRecord) error   { return nil }
func (NullJournal) Close() error                                      { return nil }

func (NullJournal) RecentRuns(context.Context, int) ([]asdb.RunRecord, error) {
	return nil, errors.New("run journal is disabled")
}

func (NullJournal) Items(context.Context, string) ([]asdb.ItemRecord, error) {
	return nil, errors.New("run journal is disabled")
}

var (
	_ asdb.Journal = (*SQLiteJournal)(nil)
	_ asdb.Journal = (*NullJournal)(nil)
)
