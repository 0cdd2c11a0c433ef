package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"admin-exporter/admin"
	"admin-exporter/models"
	"admin-exporter/utils"
)

// SearchOrdersByProduct scans every orders page for order lines whose
// product title equals title exactly and returns "number - status" for
// each match, sorted. Pages are spaced by the configured page delay. A
// failing page stops the search with an error.
func (e *Exporter) SearchOrdersByProduct(ctx context.Context, title string, filter url.Values) ([]string, error) {
	first, err := e.client.Orders(ctx, 0, filter)
	if err != nil {
		return nil, fmt.Errorf("services: order search: %w", err)
	}
	pages := max(first.Links.Pages, 1)
	e.progress.Start(pages, "Orders")
	defer e.progress.Finish()

	var matches []string
	for page := 1; page <= pages; page++ {
		if err := utils.Sleep(ctx, e.cfg.PageDelay()); err != nil {
			return nil, err
		}
		list, err := e.client.Orders(ctx, page, filter)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.logger.Error("[search] Orders page %d/%d failed: %v", page, pages, err)
			return nil, fmt.Errorf("services: order search: page %d: %w", page, err)
		}
		matches = append(matches, matchOrders(list.Orders, title)...)
		e.progress.Add(1)
	}
	sort.Strings(matches)
	e.logger.Info("[search] %d orders contain %q", len(matches), title)
	return matches, nil
}

func matchOrders(orders []models.Order, title string) []string {
	var out []string
	for _, o := range orders {
		for _, p := range o.OrderProducts {
			if string(p.ProductTitle) == title {
				out = append(out, fmt.Sprintf("%s - %s", o.Number, o.Status))
			}
		}
	}
	return out
}

// Resaver re-submits an invoice form.
type Resaver interface {
	Resave(ctx context.Context, invoiceID string) error
}

// InvoiceResult is the outcome for one invoice number.
type InvoiceResult struct {
	Number    string
	InvoiceID string
	Err       error
}

// FindInvoiceID pages /admin/invoices.json until an invoice with number is
// found or a page comes back empty. A failing page ends the search.
func (e *Exporter) FindInvoiceID(ctx context.Context, number string) (string, bool) {
	var found string
	_, err := admin.PageUntilEmpty(ctx, func(ctx context.Context, page int) (int, error) {
		invoices, err := e.client.Invoices(ctx, page)
		if err != nil {
			return 0, err
		}
		for _, inv := range invoices {
			if string(inv.Number) == number {
				found = string(inv.ID)
				return 0, nil
			}
		}
		return len(invoices), nil
	})
	if err != nil {
		e.logger.Warn("[invoices] Lookup of %s stopped: %v", number, err)
	}
	return found, found != ""
}

// ResaveInvoices resolves each invoice number to its ID and re-saves it.
// Unknown numbers are reported and skipped.
func (e *Exporter) ResaveInvoices(ctx context.Context, saver Resaver, numbers []string) []InvoiceResult {
	var results []InvoiceResult
	for _, n := range numbers {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		id, ok := e.FindInvoiceID(ctx, n)
		if !ok {
			e.logger.Warn("[invoices] Invoice %s not found", n)
			results = append(results, InvoiceResult{Number: n, Err: fmt.Errorf("invoice %s: %w", n, admin.ErrNotFound)})
			continue
		}
		err := saver.Resave(ctx, id)
		if err != nil {
			e.logger.Error("[invoices] Resave of %s (id %s) failed: %v", n, id, err)
		} else {
			e.logger.Info("[invoices] Resaved %s (id %s)", n, id)
		}
		results = append(results, InvoiceResult{Number: n, InvoiceID: id, Err: err})
	}
	return results
}
