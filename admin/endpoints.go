package admin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"admin-exporter/models"
)

func (c *Client) ProductCount(ctx context.Context) (int, error) {
	var out models.CountResponse
	if err := c.GetJSON(ctx, "/admin/products/count.json", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Products returns one listing page. page 0 omits the page parameter.
func (c *Client) Products(ctx context.Context, page, limit int) ([]models.ProductSummary, error) {
	var out models.ProductList
	if err := c.GetJSON(ctx, "/admin/products.json", pageQuery(page, limit), &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) Product(ctx context.Context, id string) (*models.ProductDetail, error) {
	var out models.ProductEnvelope
	if err := c.GetJSON(ctx, "/admin/products/"+url.PathEscape(id)+".json", nil, &out); err != nil {
		return nil, err
	}
	if out.Product == nil {
		return nil, fmt.Errorf("admin: product %s: %w", id, ErrNotFound)
	}
	return out.Product, nil
}

// ShopID returns shop_id of the first product, or UnknownShop.
func (c *Client) ShopID(ctx context.Context) string {
	products, err := c.Products(ctx, 0, 0)
	if err != nil {
		c.logger.Warn("[admin] Could not resolve shop ID: %v", err)
		return UnknownShop
	}
	if len(products) == 0 || products[0].ShopID == "" {
		return UnknownShop
	}
	return string(products[0].ShopID)
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var out models.CategoryList
	if err := c.GetJSON(ctx, "/admin/categories.json", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) Collection(ctx context.Context, id string) (*models.Collection, error) {
	var out models.CollectionEnvelope
	if err := c.GetJSON(ctx, "/admin/collections/"+url.PathEscape(id)+".json", nil, &out); err != nil {
		return nil, err
	}
	if out.Collection == nil {
		return nil, fmt.Errorf("admin: collection %s: %w", id, ErrNotFound)
	}
	return out.Collection, nil
}

func (c *Client) CollectionProducts(ctx context.Context, id string) ([]models.CollectionProduct, error) {
	var out models.CollectionProductList
	if err := c.GetJSON(ctx, "/admin/collections/"+url.PathEscape(id)+"/products.json", nil, &out); err != nil {
		return nil, err
	}
	return out.CollectionProducts, nil
}

func (c *Client) DiscountCodes(ctx context.Context, page, limit int) (*models.DiscountCodeList, error) {
	var out models.DiscountCodeList
	if err := c.GetJSON(ctx, "/admin/discount_codes.json", pageQuery(page, limit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Reviews(ctx context.Context, page, limit int) (*models.ReviewList, error) {
	var out models.ReviewList
	if err := c.GetJSON(ctx, "/admin/reviews.json", pageQuery(page, limit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Orders returns one page of orders. filter carries any extra list query
// (status, search) the admin page was filtered by.
func (c *Client) Orders(ctx context.Context, page int, filter url.Values) (*models.OrderList, error) {
	var out models.OrderList
	if err := c.GetJSON(ctx, "/admin/orders.json", merge(pageQuery(page, 0), filter), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Customers(ctx context.Context, page int, filter url.Values) ([]models.Customer, error) {
	var out models.CustomerList
	if err := c.GetJSON(ctx, "/admin/customers.json", merge(pageQuery(page, 0), filter), &out); err != nil {
		return nil, err
	}
	return out.Customers, nil
}

func (c *Client) Invoices(ctx context.Context, page int) ([]models.Invoice, error) {
	var out models.InvoiceList
	if err := c.GetJSON(ctx, "/admin/invoices.json", pageQuery(page, 0), &out); err != nil {
		return nil, err
	}
	return out.Invoices, nil
}

func (c *Client) Domains(ctx context.Context) ([]models.SubDomain, error) {
	var out models.DomainList
	if err := c.GetJSON(ctx, "/admin/domains.json", nil, &out); err != nil {
		return nil, err
	}
	return out.SubDomains, nil
}

func (c *Client) EmailDNS(ctx context.Context) (*models.EmailDNSSettings, error) {
	var out models.EmailDNSSettings
	if err := c.GetJSON(ctx, "/admin/settings/company/email_dns.json", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Checkout reads the storefront checkout details. langPrefix is an optional
// storefront language path such as "nl".
func (c *Client) Checkout(ctx context.Context, langPrefix string) (*models.CheckoutDetails, error) {
	path := "/checkout/onestep/details/"
	if p := strings.Trim(langPrefix, "/"); p != "" {
		path = "/" + p + path
	}
	var out models.CheckoutDetails
	if err := c.GetJSON(ctx, path, url.Values{"format": {"json"}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
