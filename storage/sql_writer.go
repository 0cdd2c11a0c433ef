package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"admin-exporter/models"
)

const rowBatchSize = 50

// sqlWriter stores tables as export_runs plus one export_rows entry per
// row. The Postgres and SQLite writers differ only in schema and
// placeholder style.
type sqlWriter struct {
	db     *sql.DB
	name   string
	dollar bool
}

func (s *sqlWriter) placeholder(n int) string {
	if s.dollar {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (s *sqlWriter) migrate(ctx context.Context, schema string) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// WriteTable records the run and batch-inserts every row as a JSON object
// of header -> value, all in one transaction. It returns the run ID.
func (s *sqlWriter) WriteTable(ctx context.Context, run Run, t *models.Table) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: begin: %w", s.name, err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`INSERT INTO export_runs (id, dataset, filename, shop_id, created_at) VALUES (%s,%s,%s,%s,%s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4), s.placeholder(5))
	if _, err := tx.ExecContext(ctx, query, run.ID, run.Dataset, t.Filename, run.ShopID, run.CreatedAt); err != nil {
		return "", fmt.Errorf("%s: insert run: %w", s.name, err)
	}

	records := t.Records()
	for i := 0; i < len(records); i += rowBatchSize {
		end := min(i+rowBatchSize, len(records))
		if err := s.insertBatch(ctx, tx, run.ID, i, records[i:end]); err != nil {
			return "", err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: commit: %w", s.name, err)
	}
	return run.ID, nil
}

func (s *sqlWriter) insertBatch(ctx context.Context, tx *sql.Tx, runID string, offset int, batch []map[string]string) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*3)

	for idx, rec := range batch {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("%s: encode row %d: %w", s.name, offset+idx, err)
		}
		base := idx * 3
		valueStrings = append(valueStrings,
			fmt.Sprintf("(%s,%s,%s)", s.placeholder(base+1), s.placeholder(base+2), s.placeholder(base+3)))
		valueArgs = append(valueArgs, runID, offset+idx, string(data))
	}

	query := fmt.Sprintf(`INSERT INTO export_rows (run_id, row_index, data) VALUES %s`,
		strings.Join(valueStrings, ","))
	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("%s: insert rows: %w", s.name, err)
	}
	return nil
}

// Rows reads back the rows of a run in export order.
func (s *sqlWriter) Rows(ctx context.Context, runID string) ([]map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT data FROM export_rows WHERE run_id = %s ORDER BY row_index`, s.placeholder(1)), runID)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch rows: %w", s.name, err)
	}
	defer rows.Close()

	var out []map[string]string
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", s.name, err)
		}
		rec := map[string]string{}
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("%s: decode row: %w", s.name, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *sqlWriter) Close() error {
	return s.db.Close()
}
