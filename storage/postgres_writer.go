package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"admin-exporter/utils"
)

// PostgresWriter persists exported tables to PostgreSQL.
type PostgresWriter struct {
	sqlWriter
}

// NewPostgresWriter opens a connection to PostgreSQL, waits for it to
// accept connections, runs schema migrations and returns a ready-to-use
// PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	ping := utils.RetryConfig{MaxAttempts: 5, BaseDelay: time.Second, Logger: logger}
	if err := ping.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{sqlWriter{db: db, name: "postgres", dollar: true}}
	if err := pw.migrate(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS export_runs (
		id          UUID         PRIMARY KEY,
		dataset     VARCHAR(100) NOT NULL,
		filename    TEXT         NOT NULL DEFAULT '',
		shop_id     VARCHAR(50)  NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS export_rows (
		run_id      UUID    NOT NULL REFERENCES export_runs(id) ON DELETE CASCADE,
		row_index   INTEGER NOT NULL,
		data        JSONB   NOT NULL,
		PRIMARY KEY (run_id, row_index)
	);

	CREATE INDEX IF NOT EXISTS idx_export_runs_dataset ON export_runs(dataset);
	CREATE INDEX IF NOT EXISTS idx_export_runs_shop    ON export_runs(shop_id);
`
