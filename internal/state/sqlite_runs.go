package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/dbtdoc/internal/engine"
)

// CreateRun records a new run in the running state.
func (s *SQLiteStore) CreateRun(ctx context.Context, id, projectDir string, startedAt time.Time) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	s.logger.Debug("creating run", slog.String("id", id), slog.String("project_dir", projectDir))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, project_dir, status, started_at) VALUES (?, ?, ?, ?)`,
		id, projectDir, string(RunStatusRunning), formatTime(startedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return &Run{
		ID:         id,
		ProjectDir: projectDir,
		Status:     RunStatusRunning,
		StartedAt:  startedAt.UTC(),
	}, nil
}

// CompleteRun marks a run as finished with the given status.
func (s *SQLiteStore) CompleteRun(ctx context.Context, id string, status RunStatus, directories, records int, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	var errVal sql.NullString
	if errMsg != "" {
		errVal = sql.NullString{String: errMsg, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, directories = ?, records = ?, error = ? WHERE id = ?`,
		string(status), formatTime(time.Now()), directories, records, errVal, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

const runColumns = `id, project_dir, status, started_at, completed_at, directories, records, error`

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetLatestRun returns the most recently started run, or nil when the
// catalog is empty.
func (s *SQLiteStore) GetLatestRun(ctx context.Context) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run         Run
		status      string
		startedAt   string
		completedAt sql.NullString
		errMsg      sql.NullString
	)
	if err := row.Scan(&run.ID, &run.ProjectDir, &status, &startedAt, &completedAt,
		&run.Directories, &run.Records, &errMsg); err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	t, err := parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("bad started_at %q: %w", startedAt, err)
	}
	run.StartedAt = t

	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("bad completed_at %q: %w", completedAt.String, err)
		}
		run.CompletedAt = &t
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return &run, nil
}

// BeginRun implements engine.RunObserver.
func (s *SQLiteStore) BeginRun(ctx context.Context, run engine.RunInfo) error {
	if _, err := s.CreateRun(ctx, run.ID, run.ProjectDir, run.StartedAt); err != nil {
		return err
	}
	s.mu.Lock()
	s.activeRun = run.ID
	s.mu.Unlock()
	return nil
}

// EndRun implements engine.RunObserver.
func (s *SQLiteStore) EndRun(ctx context.Context, run engine.RunInfo, summary *engine.Summary, runErr error) error {
	s.mu.Lock()
	s.activeRun = ""
	s.mu.Unlock()

	status, msg := RunStatusCompleted, ""
	if runErr != nil {
		status, msg = RunStatusFailed, runErr.Error()
	}

	var dirs, records int
	if summary != nil {
		dirs, records = summary.Directories, summary.Records
	}

	// The pass context may already be canceled; the run must still be closed.
	return s.CompleteRun(context.WithoutCancel(ctx), run.ID, status, dirs, records, msg)
}
