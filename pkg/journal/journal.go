package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/philipparndt/gotoolpath/pkg/sequencer"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	macro       TEXT    NOT NULL,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER,
	steps       INTEGER NOT NULL DEFAULT 0,
	errors      INTEGER NOT NULL DEFAULT 0,
	warnings    INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS steps (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     INTEGER NOT NULL REFERENCES runs(id),
	seq        INTEGER NOT NULL,
	code       TEXT    NOT NULL,
	message    TEXT    NOT NULL,
	status     TEXT    NOT NULL,
	reply      TEXT    NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	error      TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS steps_run ON steps(run_id, seq);
`

// Journal stores sequencer runs and the outcome of each step in sqlite
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal database. ":memory:" gives a private
// in-memory journal.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// ":memory:" databases exist per connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal tables: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the database
func (j *Journal) Close() error {
	return j.db.Close()
}

// Run is an open journal entry. It implements sequencer.Recorder.
type Run struct {
	ID    int64
	Macro string

	j   *Journal
	seq int
}

// BeginRun starts a journal entry for a macro
func (j *Journal) BeginRun(ctx context.Context, macro string) (*Run, error) {
	res, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (macro, started_at) VALUES (?, ?)`, macro, j.now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to begin run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to begin run: %w", err)
	}
	return &Run{ID: id, Macro: macro, j: j}, nil
}

// RecordStep stores one step result
func (r *Run) RecordStep(result sequencer.StepResult) error {
	r.seq++
	errText := ""
	if result.Err != nil {
		errText = result.Err.Error()
	}
	_, err := r.j.db.Exec(
		`INSERT INTO steps (run_id, seq, code, message, status, reply, elapsed_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.seq, result.Step.Code, result.Step.Message, string(result.Status),
		result.Reply, result.Elapsed.Milliseconds(), errText)
	if err != nil {
		return fmt.Errorf("failed to record step %d of run %d: %w", r.seq, r.ID, err)
	}
	return nil
}

// Finish stores the summary and the end time
func (r *Run) Finish(ctx context.Context, summary sequencer.Summary) error {
	_, err := r.j.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, steps = ?, errors = ?, warnings = ?, skipped = ? WHERE id = ?`,
		r.j.now().UnixMilli(), summary.Steps, summary.Errors, summary.Warnings, summary.Skipped, r.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", r.ID, err)
	}
	return nil
}

// RunInfo is a stored run
type RunInfo struct {
	ID       int64
	Macro    string
	Started  time.Time
	Finished time.Time // zero while the run is open or was interrupted
	Summary  sequencer.Summary
}

// StepInfo is a stored step
type StepInfo struct {
	Seq     int
	Code    string
	Message string
	Status  sequencer.Status
	Reply   string
	Elapsed time.Duration
	Error   string
}

// Runs returns the most recent runs, newest first
func (j *Journal) Runs(ctx context.Context, limit int) ([]RunInfo, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, macro, started_at, finished_at, steps, errors, warnings, skipped
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			info     RunInfo
			started  int64
			finished sql.NullInt64
		)
		if err := rows.Scan(&info.ID, &info.Macro, &started, &finished,
			&info.Summary.Steps, &info.Summary.Errors, &info.Summary.Warnings, &info.Summary.Skipped); err != nil {
			return nil, fmt.Errorf("failed to read run: %w", err)
		}
		info.Started = time.UnixMilli(started)
		if finished.Valid {
			info.Finished = time.UnixMilli(finished.Int64)
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// ErrRunNotFound is returned by Steps for unknown run ids
var ErrRunNotFound = errors.New("run not found")

// Steps returns the steps of a run in execution order
func (j *Journal) Steps(ctx context.Context, runID int64) ([]StepInfo, error) {
	var exists int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to query run %d: %w", runID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT seq, code, message, status, reply, elapsed_ms, error
		 FROM steps WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}
	defer rows.Close()

	var steps []StepInfo
	for rows.Next() {
		var (
			info      StepInfo
			status    string
			elapsedMs int64
		)
		if err := rows.Scan(&info.Seq, &info.Code, &info.Message, &status, &info.Reply, &elapsedMs, &info.Error); err != nil {
			return nil, fmt.Errorf("failed to read step: %w", err)
		}
		info.Status = sequencer.Status(status)
		info.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		steps = append(steps, info)
	}
	return steps, rows.Err()
}
