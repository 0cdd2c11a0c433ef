package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"admin-exporter/models"
)

// TableWriter is the interface any table sink must satisfy. WriteTable
// returns where the table ended up: a file path or a run ID.
type TableWriter interface {
	WriteTable(ctx context.Context, run Run, t *models.Table) (string, error)
	Close() error
}

// Run identifies one export of one dataset.
type Run struct {
	ID        string
	Dataset   string
	ShopID    string
	CreatedAt time.Time
}

// NewRun starts a run with a fresh ID.
func NewRun(dataset, shopID string) Run {
	return Run{
		ID:        uuid.NewString(),
		Dataset:   dataset,
		ShopID:    shopID,
		CreatedAt: time.Now().UTC(),
	}
}
