package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"upreport/internal/core"
)

var ErrRunNotFound = errors.New("report run not found")

// SaveRun stores a run record. Saving the same id again replaces it.
func (r *SQLiteRepository) SaveRun(ctx context.Context, run core.RunRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO report_runs
			(id, kind, window_start, window_end, generated_at, generated_unix,
			 output_ref, malformed_records, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind),
		run.Window.Start.Format(time.RFC3339Nano), run.Window.End.Format(time.RFC3339Nano),
		run.GeneratedAt.Format(time.RFC3339Nano), run.GeneratedAt.UnixNano(),
		run.OutputRef, run.Malformed, string(run.Status), run.Error)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun returns one run by id.
func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (core.RunRecord, error) {
	row := r.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// ListRuns returns the most recent runs first.
func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]core.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, selectRuns+` ORDER BY generated_unix DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []core.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

const selectRuns = `
	SELECT id, kind, window_start, window_end, generated_at, output_ref,
	       malformed_records, status, error
	FROM report_runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (core.RunRecord, error) {
	var (
		run                     core.RunRecord
		kind, status            string
		start, end, generatedAt string
	)
	if err := s.Scan(&run.ID, &kind, &start, &end, &generatedAt, &run.OutputRef,
		&run.Malformed, &status, &run.Error); err != nil {
		return core.RunRecord{}, err
	}
	run.Kind = core.ReportKind(kind)
	run.Status = core.RunStatus(status)

	var err error
	if run.Window.Start, err = time.Parse(time.RFC3339Nano, start); err != nil {
		return core.RunRecord{}, fmt.Errorf("run %s: parse window start: %w", run.ID, err)
	}
	if run.Window.End, err = time.Parse(time.RFC3339Nano, end); err != nil {
		return core.RunRecord{}, fmt.Errorf("run %s: parse window end: %w", run.ID, err)
	}
	if run.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt); err != nil {
		return core.RunRecord{}, fmt.Errorf("run %s: parse generated_at: %w", run.ID, err)
	}
	return run, nil
}
