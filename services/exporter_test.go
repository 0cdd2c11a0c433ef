package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"admin-exporter/admin"
	"admin-exporter/config"
	"admin-exporter/models"
	"admin-exporter/utils"
)

func newTestExporter(t *testing.T, mux *http.ServeMux) *Exporter {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.BaseURL = srv.URL
	cfg.Cookie = "sid=test"
	cfg.MaxRetries = 1
	cfg.RetryDelayMs = 1
	cfg.PageDelayMs = 0
	cfg.Languages = []string{"us", "nl"}

	logger := utils.NewDiscardLogger()
	client, err := admin.NewClient(cfg, logger)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewExporter(client, cfg, logger, utils.NewProgress(logger, true))
}

func serveJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func productMux(t *testing.T) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/products/count.json", serveJSON(`{"count": 3}`))
	mux.HandleFunc("/admin/products.json", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Write([]byte(`{"products": [{"id": 1, "shop_id": 77}, {"id": 2, "shop_id": 77}]}`))
		case "2":
			w.Write([]byte(`{"products": [{"id": 2}, {"id": 3}]}`))
		default:
			w.Write([]byte(`{"products": []}`))
		}
	})
	mux.HandleFunc("/admin/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimSuffix(r.PathValue("id"), ".json") {
		case "1":
			w.Write([]byte(`{"product": {"id": 1, "brand_id": 5, "supplier_id": false,
				"product_categories": [{"category_id": 10, "category": {"id": 10,
					"us": {"id": 100, "slug": "shoes", "fulltitle": "Shoes"},
					"nl": {"id": 101, "slug": "schoenen", "title": "Schoenen"}}}],
				"custom_fields": [{"id": 9, "type": "text", "is_required": true, "max_characters": 20,
					"created_at": "2024-01-01", "us": {"title": "Engraving"}}],
				"product_discounts": {"4": {"id": 4, "product_id": 1, "quantity": 10, "price": 9.5,
					"customer_group": {"title": "Wholesale"}}, "5": {"id": 5, "product_id": 1, "quantity": 0}},
				"product_relations": [{"related_product_id": 2, "position": 1}]}}`))
		case "2":
			w.Write([]byte(`{"product": {"id": 2, "product_categories": false, "custom_fields": [],
				"product_discounts": [], "product_relations": false}}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	return mux
}

func TestProductCategories(t *testing.T) {
	e := newTestExporter(t, productMux(t))
	table, err := e.ProductCategories(context.Background())
	if err != nil {
		t.Fatalf("ProductCategories: %v", err)
	}

	wantHeader := []string{"Product_ID", "Category_ID", "Category_Slug",
		"Category_US ID", "Category_US Slug", "Category_US Name",
		"Category_NL ID", "Category_NL Slug", "Category_NL Name"}
	if !reflect.DeepEqual(table.Header, wantHeader) {
		t.Errorf("header = %v", table.Header)
	}
	want := [][]string{
		{"1", "10", "shoes", "100", "shoes", "Shoes", "101", "schoenen", "-"},
		{"2", "-", "-", "-", "-", "-", "-", "-", "-"},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("rows = %v; want %v", table.Rows, want)
	}
	if table.Filename != "productCatExport.csv" {
		t.Errorf("filename = %q", table.Filename)
	}
}

func TestPerProductExports(t *testing.T) {
	tests := []struct {
		name     string
		run      func(*Exporter, context.Context) (*models.Table, error)
		filename string
		want     [][]string
	}{
		{
			name:     "custom fields",
			run:      (*Exporter).CustomFields,
			filename: "77_custom_field.csv",
			want: [][]string{
				{"1", "9", "text", "true", "20", "2024-01-01", "Engraving", "-"},
				{"2", "-", "-", "-", "-", "-", "-", "-"},
			},
		},
		{
			name:     "quantity discounts",
			run:      (*Exporter).QuantityDiscounts,
			filename: "77_quantity_discount_export.csv",
			want: [][]string{
				{"1", "", "4", "", "", "", "", "9.5", "10", "", "", "Wholesale"},
			},
		},
		{
			name:     "related products",
			run:      (*Exporter).RelatedProducts,
			filename: "77_related_product_export.csv",
			want: [][]string{
				{"1", "2", "1"},
				{"2", "", ""},
			},
		},
	}
	for _, tt := range tests {
		e := newTestExporter(t, productMux(t))
		table, err := tt.run(e, context.Background())
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if table.Filename != tt.filename {
			t.Errorf("%s: filename = %q; want %q", tt.name, table.Filename, tt.filename)
		}
		if !reflect.DeepEqual(table.Rows, tt.want) {
			t.Errorf("%s: rows = %v; want %v", tt.name, table.Rows, tt.want)
		}
	}
}

func TestWalkProductsFailsWhenFirstPageFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/products/count.json", serveJSON(`{"count": 1}`))
	mux.HandleFunc("/admin/products.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	e := newTestExporter(t, mux)
	_, err := e.ProductCategories(context.Background())
	if !errors.Is(err, admin.ErrUnauthorized) {
		t.Fatalf("got %v; want ErrUnauthorized", err)
	}
}

func TestWalkProductsKeepsRowsWhenLaterPageFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/products/count.json", serveJSON(`{"count": 2}`))
	mux.HandleFunc("/admin/products.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(`{"products": [{"id": 1}]}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/admin/products/{id}", serveJSON(`{"product": {"id": 1, "product_relations": []}}`))

	e := newTestExporter(t, mux)
	table, err := e.RelatedProducts(context.Background())
	if err != nil {
		t.Fatalf("RelatedProducts: %v", err)
	}
	if table.Len() != 1 {
		t.Errorf("rows = %v; want the one product gathered before the failure", table.Rows)
	}
}

func TestCategoryRow(t *testing.T) {
	data := `{"id": 1, "position": 0, "depth": 1, "type": "category", "parent_category_id": false,
		"parent_titles": "", "nl": {"title": "Kleding"}, "us": {"title": "Clothing"},
		"children_categories": [
			{"id": 2, "nl": {"title": "Broeken"}, "children_categories": [{"id": 4, "nl": {"title": "Jeans"}}]},
			{"id": 3, "nl": {"title": "Jassen"}, "children_categories": false}
		]}`
	var c models.Category
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []string{"1", "Kleding", "0", "1", "category", "false", "",
		"2; 3", "Broeken; Jassen", "4", "Jeans"}
	if got := categoryRow(c); !reflect.DeepEqual(got, want) {
		t.Errorf("categoryRow() = %q; want %q", got, want)
	}
}

func TestCategoriesEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/products.json", serveJSON(`{"products": []}`))
	mux.HandleFunc("/admin/categories.json", serveJSON(`{"categories": []}`))
	e := newTestExporter(t, mux)
	if _, err := e.Categories(context.Background()); !errors.Is(err, ErrNoCategories) {
		t.Fatalf("got %v; want ErrNoCategories", err)
	}
}

func TestDiscountCodesPagesByCount(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/discount_codes.json", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("limit") != "250" {
			t.Errorf("limit = %q", r.URL.Query().Get("limit"))
		}
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(`{"discount_codes": [{"id": 1, "code": "SUMMER", "status": "active", "type": "percentage",
				"value": 0, "start_date": "2024-06-01", "end_date": false}], "links": {"count": 300}}`))
		case "2":
			w.Write([]byte(`{"discount_codes": [{"id": 2, "value": "12.50"}], "links": {"count": 300}}`))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})
	e := newTestExporter(t, mux)
	table, err := e.DiscountCodes(context.Background())
	if err != nil {
		t.Fatalf("DiscountCodes: %v", err)
	}
	want := [][]string{
		{"1", "SUMMER", "active", "percentage", "0", "2024-06-01", "N/A"},
		{"2", "N/A", "N/A", "N/A", "12.50", "N/A", "N/A"},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("rows = %v; want %v", table.Rows, want)
	}
	if calls.Load() != 2 {
		t.Errorf("fetched %d pages; want 2", calls.Load())
	}
}

// failingPageMux answers page 2 of path with a server error. The listing
// reports 600 items, so a complete run would need three pages.
func failingPageMux(t *testing.T, path, body string, pages *[]string) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		*pages = append(*pages, page)
		if page == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(body))
	})
	return mux
}

func TestDiscountCodesFailingPage(t *testing.T) {
	var pages []string
	mux := failingPageMux(t, "/admin/discount_codes.json",
		`{"discount_codes": [{"id": 1, "code": "A"}], "links": {"count": 600}}`, &pages)
	e := newTestExporter(t, mux)

	table, err := e.DiscountCodes(context.Background())
	if err == nil {
		t.Fatalf("DiscountCodes returned %d rows and no error", table.Len())
	}
	if table != nil {
		t.Errorf("table = %v; want nil", table.Rows)
	}
	if !strings.Contains(err.Error(), "page 2/3") {
		t.Errorf("err = %v", err)
	}
	for _, p := range pages {
		if p == "3" {
			t.Errorf("page 3 fetched after page 2 failed")
		}
	}
}

func TestReviewsFailingPage(t *testing.T) {
	var pages []string
	mux := failingPageMux(t, "/admin/reviews.json",
		`{"reviews": [{"id": 1, "shop_id": 77}], "links": {"count": 600}}`, &pages)
	e := newTestExporter(t, mux)

	table, err := e.Reviews(context.Background())
	if err == nil {
		t.Fatalf("Reviews returned %d rows and no error", table.Len())
	}
	if table != nil {
		t.Errorf("table = %v; want nil", table.Rows)
	}
	if !strings.Contains(err.Error(), "services: reviews") {
		t.Errorf("err = %v", err)
	}
}

func TestReviews(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/reviews.json", serveJSON(`{"reviews": [
		{"id": 1, "shop_id": 77, "score": 5, "is_visible": true, "product_id": 3,
			"product": {"us": {"title": "Shoe"}, "nl": {"title": "Schoen"}}},
		{"id": 2, "shop_id": 77, "product": {"fr": {"title": "Chaussure"}}},
		{"id": 3, "shop_id": 77, "product": false}
	], "links": {"count": 3}}`))
	e := newTestExporter(t, mux)
	table, err := e.Reviews(context.Background())
	if err != nil {
		t.Fatalf("Reviews: %v", err)
	}
	if table.Filename != "77_reviewExport.csv" {
		t.Errorf("filename = %q", table.Filename)
	}
	var names []string
	for _, row := range table.Rows {
		names = append(names, row[8])
	}
	if want := []string{"Schoen", "Chaussure", "null"}; !reflect.DeepEqual(names, want) {
		t.Errorf("product names = %v; want %v", names, want)
	}
}

func TestReviewsEmptyFirstPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/reviews.json", serveJSON(`{"reviews": [], "links": {"count": 0}}`))
	e := newTestExporter(t, mux)
	if _, err := e.Reviews(context.Background()); !errors.Is(err, ErrNoReviews) {
		t.Fatalf("got %v; want ErrNoReviews", err)
	}
}
