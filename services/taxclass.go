package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"admin-exporter/models"
	"admin-exporter/utils"
)

// TaxClassData is a collection's de-duplicated product and category lists.
type TaxClassData struct {
	CollectionID       string
	SmartTaxExcluded   []string
	Excluded           []string
	FilterCategories   []string
	FilterSuppliers    []string
	FilterBrands       []string
	IncludedProductIDs []string
}

// TaxClass fetches a collection and its products concurrently.
func (e *Exporter) TaxClass(ctx context.Context, collectionID string) (*TaxClassData, error) {
	var (
		wg         sync.WaitGroup
		collection *models.Collection
		products   []models.CollectionProduct
		errC, errP error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		collection, errC = e.client.Collection(ctx, collectionID)
	}()
	go func() {
		defer wg.Done()
		products, errP = e.client.CollectionProducts(ctx, collectionID)
	}()
	wg.Wait()

	if errC != nil {
		return nil, fmt.Errorf("services: tax class %s: %w", collectionID, errC)
	}
	if errP != nil {
		return nil, fmt.Errorf("services: tax class %s products: %w", collectionID, errP)
	}

	included := make([]string, 0, len(products))
	for _, p := range products {
		included = append(included, string(p.ProductID))
	}
	return &TaxClassData{
		CollectionID:       collectionID,
		SmartTaxExcluded:   utils.Dedupe(collection.SmartTaxExcludedProducts.Strings()),
		Excluded:           utils.Dedupe(collection.Data.ExcludedProducts.Strings()),
		FilterCategories:   utils.Dedupe(collection.SmartTaxFilters.Categories.Strings()),
		FilterSuppliers:    utils.Dedupe(collection.SmartTaxFilters.Suppliers.Strings()),
		FilterBrands:       utils.Dedupe(collection.SmartTaxFilters.Brands.Strings()),
		IncludedProductIDs: utils.Dedupe(included),
	}, nil
}

// Table lays the four lists out side by side, one index per row.
func (d *TaxClassData) Table() *models.Table {
	table := models.NewTable("tax_class", "collection_"+d.CollectionID+"_data.csv",
		"smart_tax_excluded_products", "excluded_products", "smart_tax_filters_categories", "included_products")
	columns := [][]string{d.SmartTaxExcluded, d.Excluded, d.FilterCategories, d.IncludedProductIDs}
	longest := 0
	for _, c := range columns {
		longest = max(longest, len(c))
	}
	for i := 0; i < longest; i++ {
		row := make([]string, len(columns))
		for j, c := range columns {
			if i < len(c) {
				row[j] = c[i]
			}
		}
		table.AddRow(row...)
	}
	return table
}

// ExportTaxClass is TaxClass followed by Table.
func (e *Exporter) ExportTaxClass(ctx context.Context, collectionID string) (*models.Table, error) {
	data, err := e.TaxClass(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	return data.Table(), nil
}

// Membership explains why a product belongs to a tax class.
type Membership struct {
	ProductID    string
	CollectionID string
	Reasons      []string
}

// Member reports whether any reason applies. An exclusion counts as a
// reason, so an excluded product is reported as a member with that reason.
func (m *Membership) Member() bool { return len(m.Reasons) > 0 }

// TaxClassMembership checks one product against a collection.
func (e *Exporter) TaxClassMembership(ctx context.Context, collectionID, productID string) (*Membership, error) {
	data, err := e.TaxClass(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	product, err := e.client.Product(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("services: product %s: %w", productID, err)
	}
	return data.Membership(product), nil
}

// Membership evaluates product against the collection lists.
func (d *TaxClassData) Membership(p *models.ProductDetail) *Membership {
	id := strings.TrimSpace(string(p.ID))
	m := &Membership{ProductID: id, CollectionID: d.CollectionID}

	if slices.Contains(d.IncludedProductIDs, id) {
		m.Reasons = append(m.Reasons, fmt.Sprintf("Product ID: %s (Included)", id))
	}
	if slices.Contains(d.SmartTaxExcluded, id) {
		m.Reasons = append(m.Reasons, fmt.Sprintf("Product ID: %s (Excluded)", id))
	}
	if brand := p.BrandID.String(); p.BrandID.Truthy() && slices.Contains(d.FilterBrands, brand) {
		m.Reasons = append(m.Reasons, fmt.Sprintf("Brand ID: %s (Filtered)", brand))
	}
	if supplier := p.SupplierID.String(); p.SupplierID.Truthy() && slices.Contains(d.FilterSuppliers, supplier) {
		m.Reasons = append(m.Reasons, fmt.Sprintf("Supplier ID: %s (Filtered)", supplier))
	}
	var matched []string
	for _, c := range p.CategoryIDs() {
		if slices.Contains(d.FilterCategories, c) {
			matched = append(matched, c)
		}
	}
	if len(matched) > 0 {
		m.Reasons = append(m.Reasons, "Category IDs: "+strings.Join(matched, ", "))
	}
	return m
}
