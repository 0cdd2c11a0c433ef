package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"admin-exporter/models"
)

// NoShipmentNote is the single row of the shipment table when the checkout
// has no shipping method selected yet.
const NoShipmentNote = "No selected shipping found. Reload the page once selected."

// OrderColumns exports the payment and region columns of one orders page.
// filter carries the list query the admin page was opened with.
func (e *Exporter) OrderColumns(ctx context.Context, page int, filter url.Values) (*models.Table, error) {
	page = max(page, 1)
	list, err := e.client.Orders(ctx, page, filter)
	if err != nil {
		return nil, fmt.Errorf("services: orders page %d: %w", page, err)
	}
	table := models.NewTable("orders", "orders_page_"+strconv.Itoa(page)+".csv",
		"Order_ID", "Number", "Payment", "Region")
	for _, o := range list.Orders {
		table.AddRow(string(o.ID), string(o.Number), orderPayment(o), o.ShippingAddressRegionName.Or("N/A"))
	}
	return table, nil
}

func orderPayment(o models.Order) string {
	payment := o.PaymentProviderKey.Or("N/A")
	if len(o.GiftCardPayments) > 0 {
		payment += " + GC"
	}
	return payment
}

// CustomerAddresses exports the billing and shipping region columns of one
// customers page.
func (e *Exporter) CustomerAddresses(ctx context.Context, page int, filter url.Values) (*models.Table, error) {
	page = max(page, 1)
	customers, err := e.client.Customers(ctx, page, filter)
	if err != nil {
		return nil, fmt.Errorf("services: customers page %d: %w", page, err)
	}
	table := models.NewTable("customers", "customers_page_"+strconv.Itoa(page)+".csv",
		"Customer_ID", "Email", "Billing Region ID", "Billing Region", "Billing Zip",
		"Shipping Region ID", "Shipping Region", "Shipping Zip")
	for _, c := range customers {
		table.AddRow(string(c.ID), string(c.Email),
			string(c.BillingAddressRegionID), string(c.BillingAddressRegionName), string(c.BillingAddressZipcode),
			string(c.ShippingAddressRegionID), string(c.ShippingAddressRegionName), string(c.ShippingAddressZipcode))
	}
	return table, nil
}

// Checkout returns the products, discount rules and shipment method of the
// current storefront checkout as three tables.
func (e *Exporter) Checkout(ctx context.Context, langPrefix string) ([]*models.Table, error) {
	details, err := e.client.Checkout(ctx, langPrefix)
	if err != nil {
		return nil, fmt.Errorf("services: checkout: %w", err)
	}
	return CheckoutTables(details), nil
}

// CheckoutTables flattens checkout details.
func CheckoutTables(d *models.CheckoutDetails) []*models.Table {
	products := models.NewTable("checkout_products", "checkout_products.csv",
		"Product ID", "Variant ID", "Title", "Qty", "AddtCostInc", "AddtCostExc", "DiscExcl", "DiscIncl",
		"TaxRate", "PriceExcl", "PriceIncl", "StockLevel", "SizeX", "SizeY", "SizeZ", "Weight", "Qty Disc")
	for _, p := range d.Checkout.Quote.Products {
		products.AddRow(string(p.ProductID), string(p.VariantID), string(p.Title), string(p.Quantity),
			string(p.AdditionalCostPriceIncl), string(p.AdditionalCostPriceExcl),
			string(p.DiscountExcl), string(p.DiscountIncl), string(p.TaxRate),
			string(p.PriceExcl), string(p.PriceIncl), string(p.StockLevel),
			string(p.SizeX), string(p.SizeY), string(p.SizeZ), string(p.Weight),
			string(p.QuantityDiscountMessages))
	}

	rules := models.NewTable("checkout_discount_rules", "checkout_discount_rules.csv",
		"Rule ID", "Type", "Title", "Minimum Amount", "Discount Amount", "Categories Names", "Is Active", "Is Stop")
	for _, r := range d.Checkout.Discount.Rules {
		rules.AddRow(string(r.ID), string(r.Type), string(r.Title),
			string(r.Data.MinCatAmount), string(r.Data.DiscountAmount),
			strings.Join(r.Data.CategoriesNames.Strings(), ", "),
			string(r.IsActive), string(r.IsStop))
	}

	shipment := models.NewTable("checkout_shipment", "checkout_shipment.csv",
		"ShipmentID", "Tax Rate", "Title", "Method", "ID", "Discount", "Service Point")
	if m, ok := d.Shipment(); ok {
		shipment.AddRow(string(m.ID), string(m.TaxRate), string(m.Title), string(m.Data.Method),
			string(m.Data.ShipmentID), string(m.Discount), string(m.IsServicePoint))
	} else {
		shipment.AddRow(NoShipmentNote)
	}

	return []*models.Table{products, rules, shipment}
}
