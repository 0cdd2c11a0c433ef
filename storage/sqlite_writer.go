package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteWriter persists exported tables to a local SQLite file.
type SQLiteWriter struct {
	sqlWriter
}

// NewSQLiteWriter creates or opens the database at path. ":memory:" opens
// a private in-memory database.
func NewSQLiteWriter(ctx context.Context, path string) (*SQLiteWriter, error) {
	dsn := ":memory:?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create database directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	sw := &SQLiteWriter{sqlWriter{db: db, name: "sqlite"}}
	if err := sw.migrate(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return sw, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS export_runs (
    id TEXT PRIMARY KEY,
    dataset TEXT NOT NULL,
    filename TEXT NOT NULL DEFAULT '',
    shop_id TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS export_rows (
    run_id TEXT NOT NULL REFERENCES export_runs(id) ON DELETE CASCADE,
    row_index INTEGER NOT NULL,
    data TEXT NOT NULL,
    PRIMARY KEY (run_id, row_index)
);

CREATE INDEX IF NOT EXISTS idx_export_runs_dataset ON export_runs(dataset);
`
