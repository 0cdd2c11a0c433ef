package services

import (
	"context"
	"fmt"
	"strings"

	"admin-exporter/models"
)

// ProductCategories exports one row per product category with the ID,
// slug and full title of every configured language.
func (e *Exporter) ProductCategories(ctx context.Context) (*models.Table, error) {
	langs := e.cfg.Languages
	header := []string{"Product_ID", "Category_ID", "Category_Slug"}
	for _, lang := range langs {
		l := strings.ToUpper(lang)
		header = append(header, "Category_"+l+" ID", "Category_"+l+" Slug", "Category_"+l+" Name")
	}
	table := models.NewTable("product_categories", "productCatExport.csv", header...)

	rows, err := e.walkProducts(ctx, "Product categories", func(p *models.ProductDetail) [][]string {
		return productCategoryRows(p, langs)
	})
	if err != nil {
		return nil, fmt.Errorf("services: product categories: %w", err)
	}
	for _, row := range rows {
		table.AddRow(row...)
	}
	return table, nil
}

func productCategoryRows(p *models.ProductDetail, langs []string) [][]string {
	if len(p.Categories) == 0 {
		return [][]string{append([]string{string(p.ID)}, dashes(2+3*len(langs))...)}
	}
	var rows [][]string
	for _, pc := range p.Categories {
		slug := "-"
		if us, ok := pc.Category.Langs.Get("us"); ok {
			slug = us.Slug.Or("-")
		}
		row := []string{string(p.ID), string(pc.Category.ID), slug}
		for _, lang := range langs {
			entry, ok := pc.Category.Langs.Get(lang)
			if !ok {
				row = append(row, "-", "-", "-")
				continue
			}
			row = append(row, entry.ID.Or("-"), entry.Slug.Or("-"), entry.Fulltitle.Or("-"))
		}
		rows = append(rows, row)
	}
	return rows
}

// CustomFields exports every product custom field with its title per
// language.
func (e *Exporter) CustomFields(ctx context.Context) (*models.Table, error) {
	shop := e.client.ShopID(ctx)
	langs := e.cfg.Languages
	header := []string{"Product_ID", "Custom_Field_ID", "Type", "Is_Required", "Max_Characters", "Created_At"}
	for _, lang := range langs {
		header = append(header, "Title_"+strings.ToUpper(lang))
	}
	table := models.NewTable("custom_fields", shop+"_custom_field.csv", header...)

	rows, err := e.walkProducts(ctx, "Custom fields", func(p *models.ProductDetail) [][]string {
		return customFieldRows(p, langs)
	})
	if err != nil {
		return nil, fmt.Errorf("services: custom fields: %w", err)
	}
	for _, row := range rows {
		table.AddRow(row...)
	}
	return table, nil
}

func customFieldRows(p *models.ProductDetail, langs []string) [][]string {
	if len(p.CustomFields) == 0 {
		return [][]string{append([]string{string(p.ID)}, dashes(5+len(langs))...)}
	}
	var rows [][]string
	for _, f := range p.CustomFields {
		row := []string{string(p.ID), string(f.ID), string(f.Type), string(f.IsRequired),
			string(f.MaxCharacters), string(f.CreatedAt)}
		for _, lang := range langs {
			title := "-"
			if entry, ok := f.Langs.Get(lang); ok {
				title = string(entry.Title)
			}
			row = append(row, title)
		}
		rows = append(rows, row)
	}
	return rows
}

// QuantityDiscounts exports the product discounts that carry a quantity.
func (e *Exporter) QuantityDiscounts(ctx context.Context) (*models.Table, error) {
	shop := e.client.ShopID(ctx)
	table := models.NewTable("quantity_discounts", shop+"_quantity_discount_export.csv",
		"Product_ID", "Variant_ID", "Discount_ID", "Start_Date", "End_Date", "Endless",
		"Percentage", "Price", "Quantity", "Discount_Type", "Customer_Group_ID", "Customer_Group_Name")

	rows, err := e.walkProducts(ctx, "Quantity discounts", quantityDiscountRows)
	if err != nil {
		return nil, fmt.Errorf("services: quantity discounts: %w", err)
	}
	for _, row := range rows {
		table.AddRow(row...)
	}
	return table, nil
}

func quantityDiscountRows(p *models.ProductDetail) [][]string {
	var rows [][]string
	for _, d := range p.Discounts {
		if !d.Quantity.Truthy() {
			continue
		}
		rows = append(rows, []string{
			string(d.ProductID), string(d.VariantID), string(d.ID), string(d.StartsAt), string(d.EndsAt),
			string(d.IsEndless), string(d.Percentage), string(d.Price), d.Quantity.String(), string(d.Type),
			string(d.CustomerGroupID), d.CustomerGroupTitle(),
		})
	}
	return rows
}

// RelatedProducts exports product relations, with a blank row for products
// without any.
func (e *Exporter) RelatedProducts(ctx context.Context) (*models.Table, error) {
	shop := e.client.ShopID(ctx)
	table := models.NewTable("related_products", shop+"_related_product_export.csv",
		"Product_ID", "Related_Product_ID", "Position")

	rows, err := e.walkProducts(ctx, "Related products", relatedProductRows)
	if err != nil {
		return nil, fmt.Errorf("services: related products: %w", err)
	}
	for _, row := range rows {
		table.AddRow(row...)
	}
	return table, nil
}

func relatedProductRows(p *models.ProductDetail) [][]string {
	if len(p.Relations) == 0 {
		return [][]string{{string(p.ID), "", ""}}
	}
	rows := make([][]string, 0, len(p.Relations))
	for _, r := range p.Relations {
		rows = append(rows, []string{string(p.ID), string(r.RelatedProductID), string(r.Position)})
	}
	return rows
}
