package admin

import (
	"context"
	"errors"
	"testing"

	"admin-exporter/utils"
)

func TestLoadThenSaveRetriesLoadOnly(t *testing.T) {
	retry := &utils.RetryConfig{MaxAttempts: 3}
	loads, saves := 0, 0
	load := func() error {
		loads++
		if loads < 2 {
			return errors.New("navigation timeout")
		}
		return nil
	}
	save := func() error {
		saves++
		return errors.New("sleep interrupted")
	}

	err := loadThenSave(context.Background(), retry, "load-invoice-1", load, save)
	if err == nil || err.Error() != "sleep interrupted" {
		t.Fatalf("err = %v", err)
	}
	if loads != 2 || saves != 1 {
		t.Errorf("loads = %d saves = %d; want 2 and 1", loads, saves)
	}
}

func TestLoadThenSaveSkipsSaveWhenLoadFails(t *testing.T) {
	retry := &utils.RetryConfig{MaxAttempts: 2}
	saves := 0
	err := loadThenSave(context.Background(), retry, "load-invoice-2",
		func() error { return errors.New("button not found") },
		func() error { saves++; return nil })
	if err == nil {
		t.Fatal("expected an error")
	}
	if saves != 0 {
		t.Errorf("save ran %d times after load failed", saves)
	}
}
