// Package index persists mirrored destinations and run history in SQLite.
package index

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the database file name under the config directory
const FileName = "history.db"

type DB struct {
	db *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	instance := &DB{db: db}
	if err := instance.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return instance, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, schemaSQL)
	return err
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS mirrors (
	id TEXT PRIMARY KEY,
	repository TEXT NOT NULL,
	provider TEXT NOT NULL,
	destination TEXT NOT NULL,
	last_run_id TEXT,
	last_run_time INTEGER,
	UNIQUE (provider, repository, destination)
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	mirror_id TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	downloaded INTEGER NOT NULL DEFAULT 0,
	displaced INTEGER NOT NULL DEFAULT 0,
	errors INTEGER NOT NULL DEFAULT 0,
	bytes INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (mirror_id) REFERENCES mirrors(id)
);

CREATE TABLE IF NOT EXISTS run_failures (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	path TEXT NOT NULL,
	kind TEXT NOT NULL,
	message TEXT NOT NULL,
	PRIMARY KEY (run_id, seq),
	FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE INDEX IF NOT EXISTS idx_runs_finished ON runs(finished_at);
`
