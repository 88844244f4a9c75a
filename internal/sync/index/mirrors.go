package index

import (
	"context"
	"database/sql"
)

func (d *DB) UpsertMirror(ctx context.Context, m Mirror) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO mirrors (id, repository, provider, destination, last_run_id, last_run_time)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_run_id=excluded.last_run_id,
			last_run_time=excluded.last_run_time
	`, m.ID, m.Repository, m.Provider, m.Destination, m.LastRunID, m.LastRunTime)
	return err
}

func (d *DB) GetMirror(ctx context.Context, id string) (*Mirror, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, repository, provider, destination, last_run_id, last_run_time
		FROM mirrors WHERE id = ?
	`, id)
	m, err := scanMirror(row)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (d *DB) ListMirrors(ctx context.Context) (mirrors []Mirror, err error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, repository, provider, destination, last_run_id, last_run_time
		FROM mirrors ORDER BY last_run_time DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for rows.Next() {
		m, err := scanMirror(rows)
		if err != nil {
			return nil, err
		}
		mirrors = append(mirrors, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mirrors, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMirror(row scanner) (Mirror, error) {
	var m Mirror
	var lastRunID sql.NullString
	var lastRunTime sql.NullInt64
	if err := row.Scan(&m.ID, &m.Repository, &m.Provider, &m.Destination, &lastRunID, &lastRunTime); err != nil {
		return Mirror{}, err
	}
	m.LastRunID = lastRunID.String
	m.LastRunTime = lastRunTime.Int64
	return m, nil
}
