package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"admin-exporter/admin"
	"admin-exporter/models"
)

// countPageLimit is the page size of the count-paged listings.
const countPageLimit = 250

// ErrNoCategories is returned when the shop has no categories.
var ErrNoCategories = errors.New("no categories found")

// ErrNoReviews is returned when the first review page is empty.
var ErrNoReviews = errors.New("no reviews found")

// Categories exports the category tree: each category with the IDs and
// titles of its children and grandchildren.
func (e *Exporter) Categories(ctx context.Context) (*models.Table, error) {
	shop := e.client.ShopID(ctx)
	categories, err := e.client.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("services: categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("services: categories: %w", ErrNoCategories)
	}

	table := models.NewTable("categories", shop+"_Categories_Export.csv",
		"ID", "Category_Title", "Position", "Depth", "Type", "Parent_Category_ID", "Parent_Title",
		"Subcategory_IDs", "Subcategory_Names", "Subsubcategory_IDs", "Subsubcategory_Names")
	for _, c := range categories {
		table.AddRow(categoryRow(c)...)
	}
	e.logger.Info("[export] %d categories", table.Len())
	return table, nil
}

func categoryRow(c models.Category) []string {
	lang, titled := c.Langs.FirstTitled()
	title := func(n models.Category) string {
		if !titled {
			return ""
		}
		return n.Langs.Title(lang)
	}

	var subIDs, subNames, subsubIDs, subsubNames []string
	for _, sub := range c.Children {
		subIDs = append(subIDs, string(sub.ID))
		subNames = append(subNames, title(sub))
		for _, subsub := range sub.Children {
			subsubIDs = append(subsubIDs, string(subsub.ID))
			subsubNames = append(subsubNames, title(subsub))
		}
	}
	return []string{
		string(c.ID), title(c), string(c.Position), string(c.Depth), string(c.Type),
		string(c.ParentCategoryID), string(c.ParentTitles),
		strings.Join(subIDs, "; "), strings.Join(subNames, "; "),
		strings.Join(subsubIDs, "; "), strings.Join(subsubNames, "; "),
	}
}

// pageByCount fetches page 1, derives the page count from its links.count
// and fetches the remaining pages. fetch stores the rows of a page and
// returns its links block. Page 1 is not fetched twice. A failing page
// aborts the whole listing.
func (e *Exporter) pageByCount(ctx context.Context, what string, limit int, fetch func(ctx context.Context, page int) (models.Links, error)) error {
	links, err := fetch(ctx, 1)
	if err != nil {
		return err
	}
	pages := admin.PageByCount(links.Count, limit)
	e.progress.Start(pages, what)
	defer e.progress.Finish()
	e.progress.Add(1)

	for page := 2; page <= pages; page++ {
		if _, err := fetch(ctx, page); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.logger.Error("[export] %s stopped at page %d/%d: %v", what, page, pages, err)
			return fmt.Errorf("page %d/%d: %w", page, pages, err)
		}
		e.progress.Add(1)
	}
	return nil
}

// DiscountCodes exports every discount code.
func (e *Exporter) DiscountCodes(ctx context.Context) (*models.Table, error) {
	table := models.NewTable("discount_codes", "discountExport.csv",
		"DiscountID", "DiscountCode", "Status", "Type", "Discount", "Start date", "End date")

	err := e.pageByCount(ctx, "Discount codes", countPageLimit, func(ctx context.Context, page int) (models.Links, error) {
		list, err := e.client.DiscountCodes(ctx, page, countPageLimit)
		if err != nil {
			return models.Links{}, err
		}
		for _, d := range list.DiscountCodes {
			table.AddRow(discountCodeRow(d)...)
		}
		return list.Links, nil
	})
	if err != nil {
		return nil, fmt.Errorf("services: discount codes: %w", err)
	}
	e.logger.Info("[export] %d discount codes", table.Len())
	return table, nil
}

func discountCodeRow(d models.DiscountCode) []string {
	return []string{
		orNA(d.ID), orNA(d.Code), orNA(d.Status), orNA(d.Type),
		orNA(d.Value), orNA(d.StartDate), orNA(d.EndDate),
	}
}

// orNA keeps a numeric zero as "0"; a missing value or false becomes N/A.
func orNA(f models.FlexString) string {
	if f == "false" {
		return "N/A"
	}
	return f.Or("N/A")
}

// Reviews exports every product review. The file is named after the shop
// of the first review.
func (e *Exporter) Reviews(ctx context.Context) (*models.Table, error) {
	table := models.NewTable("reviews", "",
		"Review_ID", "Created_at", "Author", "Email", "Content", "Score", "Is_Visible",
		"Product_ID", "Product_name", "Updated_at")
	langs := e.cfg.ReviewLanguages
	shop := ""

	err := e.pageByCount(ctx, "Reviews", countPageLimit, func(ctx context.Context, page int) (models.Links, error) {
		list, err := e.client.Reviews(ctx, page, countPageLimit)
		if err != nil {
			return models.Links{}, err
		}
		if page == 1 {
			if len(list.Reviews) == 0 {
				return models.Links{}, ErrNoReviews
			}
			shop = list.Reviews[0].ShopID.Or("Unknown_Shop_ID")
		}
		for _, r := range list.Reviews {
			table.AddRow(string(r.ID), string(r.CreatedAt), string(r.Author), string(r.Email),
				string(r.Content), string(r.Score), string(r.IsVisible), string(r.ProductID),
				reviewProductName(r.Product.Langs, langs), string(r.UpdatedAt))
		}
		return list.Links, nil
	})
	if err != nil {
		return nil, fmt.Errorf("services: reviews: %w", err)
	}
	table.Filename = shop + "_reviewExport.csv"
	e.logger.Info("[export] %d reviews", table.Len())
	return table, nil
}

// reviewProductName prefers the Dutch title, then the first titled
// language of langs, else the literal "null".
func reviewProductName(titles models.LangMap, langs []string) string {
	if t := titles.Title("nl"); t != "" {
		return t
	}
	for _, lang := range langs {
		if t := titles.Title(lang); t != "" {
			return t
		}
	}
	return "null"
}
