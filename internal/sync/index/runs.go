package index

import (
	"context"
	"fmt"
	"time"

	"github.com/dl-alexandre/rmirror/internal/types"
)

// RecordRun stores a finished run with its failures and moves the mirror's
// last-run pointer, all in one transaction.
func (d *DB) RecordRun(ctx context.Context, run types.RunRecord, failures []types.ItemFailure) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	mirrorID := MirrorID(run.Provider, run.Repository, run.Destination)
	finished := run.FinishedAt.UnixMilli()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO mirrors (id, repository, provider, destination, last_run_id, last_run_time)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_run_id=excluded.last_run_id,
			last_run_time=excluded.last_run_time
	`, mirrorID, run.Repository, run.Provider, run.Destination, run.ID, finished); err != nil {
		return fmt.Errorf("failed to update mirror: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, mirror_id, started_at, finished_at, downloaded, displaced, errors, bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, mirrorID, run.StartedAt.UnixMilli(), finished, run.Downloaded, run.Displaced, run.Errors, int64(run.Bytes)); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, f := range failures {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO run_failures (run_id, seq, path, kind, message) VALUES (?, ?, ?, ?, ?)
		`, run.ID, i, f.Path, f.Kind, f.Error); err != nil {
			return fmt.Errorf("failed to insert run failure: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (d *DB) ListRuns(ctx context.Context, limit int) (runs []*types.RunRecord, err error) {
	query := `
		SELECT r.id, m.repository, m.provider, m.destination, r.started_at, r.finished_at,
		       r.downloaded, r.displaced, r.errors, r.bytes
		FROM runs r JOIN mirrors m ON m.id = r.mirror_id
		ORDER BY r.finished_at DESC, r.rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for rows.Next() {
		var run types.RunRecord
		var started, finished, bytes int64
		if err := rows.Scan(&run.ID, &run.Repository, &run.Provider, &run.Destination, &started, &finished,
			&run.Downloaded, &run.Displaced, &run.Errors, &bytes); err != nil {
			return nil, err
		}
		run.StartedAt = time.UnixMilli(started)
		run.FinishedAt = time.UnixMilli(finished)
		run.Bytes = uint64(bytes)
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListFailures returns the item failures of one run in the order they
// happened.
func (d *DB) ListFailures(ctx context.Context, runID string) (failures []types.ItemFailure, err error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT path, kind, message FROM run_failures WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	failures = []types.ItemFailure{}
	for rows.Next() {
		var f types.ItemFailure
		if err := rows.Scan(&f.Path, &f.Kind, &f.Error); err != nil {
			return nil, err
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return failures, nil
}
