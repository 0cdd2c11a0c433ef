package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"admin-exporter/admin"
	"admin-exporter/config"
	"admin-exporter/models"
	"admin-exporter/utils"
)

// productPageLimit is the page size of the product listing walk.
const productPageLimit = 50

// Exporter turns admin API responses into flat tables.
type Exporter struct {
	client   *admin.Client
	cfg      *config.Config
	logger   *utils.Logger
	progress utils.Progress
}

// NewExporter creates an Exporter. A nil progress reports through the
// logger.
func NewExporter(client *admin.Client, cfg *config.Config, logger *utils.Logger, progress utils.Progress) *Exporter {
	if progress == nil {
		progress = utils.NewProgress(logger, true)
	}
	return &Exporter{client: client, cfg: cfg, logger: logger, progress: progress}
}

type productRows struct {
	page, index int
	rows        [][]string
}

// walkProducts pages through /admin/products.json, fetches every product
// detail once on the worker pool and collects the rows rowsFor builds for
// it, ordered by listing position.
//
// A failing listing page stops the walk; the rows gathered so far are
// still returned. Cancellation, or a failure on the very first page, is
// reported as an error.
func (e *Exporter) walkProducts(ctx context.Context, description string, rowsFor func(*models.ProductDetail) [][]string) ([][]string, error) {
	total, err := e.client.ProductCount(ctx)
	if err != nil {
		e.logger.Warn("[export] Could not read product count: %v", err)
	}
	if total < 1 {
		total = 1
	}
	e.progress.Start(total, description)
	defer e.progress.Finish()

	seen := utils.NewIDSet()
	pool := utils.NewWorkerPool(e.cfg.MaxConcurrency, e.cfg.RateLimitMs)

	var mu sync.Mutex
	var collected []productRows

	pages, err := admin.PageUntilEmpty(ctx, func(ctx context.Context, page int) (int, error) {
		products, err := e.client.Products(ctx, page, productPageLimit)
		if err != nil {
			return 0, err
		}
		e.logger.Debug("[export] Page %d: %d products", page, len(products))
		for i, p := range products {
			id := string(p.ID)
			if id == "" || !seen.Add(id) {
				continue
			}
			pool.Submit(func() {
				defer e.progress.Add(1)
				if ctx.Err() != nil {
					return
				}
				detail, err := e.client.Product(ctx, id)
				if err != nil {
					e.logger.Warn("[export] Skipping product %s: %v", id, err)
					return
				}
				rows := rowsFor(detail)
				mu.Lock()
				collected = append(collected, productRows{page: page, index: i, rows: rows})
				mu.Unlock()
			})
		}
		return len(products), nil
	})
	pool.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		if pages == 0 {
			return nil, fmt.Errorf("list products: %w", err)
		}
		e.logger.Error("[export] Product listing stopped after %d pages: %v", pages, err)
	}
	e.logger.Info("[export] Processed %d unique products over %d pages", seen.Size(), pages)

	sort.Slice(collected, func(i, j int) bool {
		if collected[i].page != collected[j].page {
			return collected[i].page < collected[j].page
		}
		return collected[i].index < collected[j].index
	})
	var rows [][]string
	for _, c := range collected {
		rows = append(rows, c.rows...)
	}
	return rows, nil
}

func dashes(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "-"
	}
	return out
}
