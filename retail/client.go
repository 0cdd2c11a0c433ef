// Package retail looks up point-of-sale sales by the web order reference
// they were synced with.
package retail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"admin-exporter/fetch"
	"admin-exporter/models"
	"admin-exporter/utils"
)

const accountSelector = "#help_account_id > var"

// Client queries the retail Sale API of one account.
type Client struct {
	baseURL string
	logger  *utils.Logger
	http    *fetch.Client
}

func NewClient(baseURL string, logger *utils.Logger, opts ...fetch.Option) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		http:    fetch.New(append([]fetch.Option{fetch.WithLogger(logger)}, opts...)...),
	}
}

// FindSale returns the saleID for an order reference, or "" if no sale
// carries it.
func (c *Client) FindSale(ctx context.Context, accountID, reference string) (string, error) {
	u := fmt.Sprintf("%s/API/Account/%s/Sale.json?%s", c.baseURL, url.PathEscape(accountID),
		url.Values{"referenceNumber": {reference}}.Encode())
	var resp models.SaleResponse
	if err := c.http.GetJSON(ctx, u, &resp); err != nil {
		return "", fmt.Errorf("retail: sale %s: %w", reference, err)
	}
	return resp.SaleID(), nil
}

// LookupSales resolves each reference in order. Failures are recorded per
// reference and do not stop the run.
func (c *Client) LookupSales(ctx context.Context, accountID string, references []string) []models.SaleLookup {
	var out []models.SaleLookup
	for _, ref := range references {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		saleID, err := c.FindSale(ctx, accountID, ref)
		switch {
		case err != nil:
			c.logger.Warn("[retail] Lookup for %s failed: %v", ref, err)
			out = append(out, models.SaleLookup{Reference: ref, Err: err})
		case saleID == "":
			out = append(out, models.SaleLookup{Reference: ref, Missing: true})
		default:
			out = append(out, models.SaleLookup{Reference: ref, SaleID: saleID})
		}
	}
	return out
}

// FormatLookup renders one result line.
func FormatLookup(r models.SaleLookup) string {
	status := r.SaleID
	switch {
	case r.Err != nil:
		status = "Error (Fetch error)"
	case r.Missing:
		status = "Missing"
	}
	return fmt.Sprintf("Order ID: %s, Sale ID: %s", r.Reference, status)
}

// ParseAccountID extracts the account ID shown in the back office help
// panel.
func ParseAccountID(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("retail: parse page: %w", err)
	}
	id := strings.TrimSpace(doc.Find(accountSelector).First().Text())
	if id == "" {
		return "", fmt.Errorf("retail: account id not found (%s)", accountSelector)
	}
	return id, nil
}

// ResolveAccountID fetches pageURL and parses the account ID from it.
func (c *Client) ResolveAccountID(ctx context.Context, pageURL string) (string, error) {
	body, err := c.http.Get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("retail: fetch %s: %w", pageURL, err)
	}
	return ParseAccountID(bytes.NewReader(body))
}
