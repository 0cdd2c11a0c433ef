package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"admin-exporter/models"
)

// CSVWriter writes each table to its own file under a directory.
// It is safe for concurrent use.
type CSVWriter struct {
	mu  sync.Mutex
	dir string
}

// NewCSVWriter creates dir if needed.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{dir: dir}, nil
}

// WriteTable creates (or truncates) {dir}/{filename} and writes the header
// and rows with CRLF line endings.
func (c *CSVWriter) WriteTable(ctx context.Context, run Run, t *models.Table) (string, error) {
	if t.Filename == "" {
		return "", fmt.Errorf("csv: table %s has no file name", t.Name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	path := filepath.Join(c.dir, t.Filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.UseCRLF = true
	if err := w.Write(t.Header); err != nil {
		return "", fmt.Errorf("csv: write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("csv: flush %q: %w", path, err)
	}
	return path, f.Close()
}

func (c *CSVWriter) Close() error { return nil }

// TXTWriter writes plain line reports under a directory.
type TXTWriter struct {
	dir string
}

func NewTXTWriter(dir string) (*TXTWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("txt: create output dir: %w", err)
	}
	return &TXTWriter{dir: dir}, nil
}

// WriteLines writes one line per entry to {dir}/{filename}.
func (t *TXTWriter) WriteLines(filename string, lines []string) (string, error) {
	path := filepath.Join(t.dir, filename)
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("txt: write %q: %w", path, err)
	}
	return path, nil
}
