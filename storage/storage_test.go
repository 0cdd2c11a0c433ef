package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"admin-exporter/models"
)

func sampleTable() *models.Table {
	t := models.NewTable("orders", "orders_page_1.csv", "Order_ID", "Payment")
	t.AddRow("1", "ideal + GC")
	t.AddRow("2", "a,b")
	return t
}

func TestCSVWriterWriteTable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := NewCSVWriter(dir)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	path, err := w.WriteTable(context.Background(), NewRun("orders", "77"), sampleTable())
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if path != filepath.Join(dir, "orders_page_1.csv") {
		t.Errorf("path = %q", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "Order_ID,Payment\r\n1,ideal + GC\r\n2,\"a,b\"\r\n"
	if string(b) != want {
		t.Errorf("file = %q; want %q", b, want)
	}
}

func TestCSVWriterRequiresFilename(t *testing.T) {
	w, err := NewCSVWriter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteTable(context.Background(), Run{}, models.NewTable("x", "", "A")); err == nil {
		t.Fatal("expected an error for a table without a file name")
	}
}

func TestTXTWriterWriteLines(t *testing.T) {
	w, err := NewTXTWriter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path, err := w.WriteLines("comparison_result.txt", []string{"ID 1 is MISSING in Dataset 2", "done"})
	if err != nil {
		t.Fatalf("WriteLines: %v", err)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "ID 1 is MISSING in Dataset 2\ndone\n" {
		t.Errorf("file = %q", b)
	}
}

func TestSQLiteWriterRoundTrip(t *testing.T) {
	ctx := context.Background()
	w, err := NewSQLiteWriter(ctx, ":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteWriter: %v", err)
	}
	defer w.Close()

	table := models.NewTable("products", "p.csv", "ID")
	for i := 0; i < rowBatchSize+5; i++ {
		table.AddRow(string(rune('a' + i%26)))
	}
	run := NewRun("products", "77")
	id, err := w.WriteTable(ctx, run, table)
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if id != run.ID {
		t.Errorf("id = %q; want %q", id, run.ID)
	}

	rows, err := w.Rows(ctx, run.ID)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if !reflect.DeepEqual(rows, table.Records()) {
		t.Errorf("rows differ from the table: got %d rows", len(rows))
	}
}

func TestSQLiteWriterFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "exports.db")
	w, err := NewSQLiteWriter(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteWriter: %v", err)
	}
	run := NewRun("orders", "")
	if _, err := w.WriteTable(ctx, run, sampleTable()); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	w, err = NewSQLiteWriter(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer w.Close()
	rows, err := w.Rows(ctx, run.ID)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 || rows[1]["Payment"] != "a,b" {
		t.Errorf("rows = %v", rows)
	}
}

func TestNewRun(t *testing.T) {
	a, b := NewRun("x", "1"), NewRun("x", "1")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("run IDs %q and %q", a.ID, b.ID)
	}
}
