package services

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeDefinition(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDatasetDefinition(t *testing.T) {
	path := writeDefinition(t, `
endpoint: admin/brands.json
collection: $.brands
paging: count
columns:
  - path: $.id
  - name: Title
    path: $.title
    default: "-"
`)
	def, err := LoadDatasetDefinition(path)
	if err != nil {
		t.Fatalf("LoadDatasetDefinition: %v", err)
	}
	if def.Endpoint != "/admin/brands.json" || def.Name != "brands" || def.Filename != "brands.csv" {
		t.Errorf("def = %+v", def)
	}
	if def.Limit != countPageLimit || def.CountPath != "$.links.count" {
		t.Errorf("paging defaults = %d %q", def.Limit, def.CountPath)
	}
	if got := def.Header(); !reflect.DeepEqual(got, []string{"$.id", "Title"}) {
		t.Errorf("header = %v", got)
	}
}

func TestLoadDatasetDefinitionInvalid(t *testing.T) {
	tests := map[string]string{
		"no endpoint": "collection: $.x\ncolumns: [{path: $.id}]\n",
		"no columns":  "endpoint: /admin/x.json\ncollection: $.x\n",
		"bad paging":  "endpoint: /admin/x.json\ncollection: $.x\npaging: cursor\ncolumns: [{path: $.id}]\n",
		"empty path":  "endpoint: /admin/x.json\ncollection: $.x\ncolumns: [{name: id}]\n",
	}
	for name, body := range tests {
		if _, err := LoadDatasetDefinition(writeDefinition(t, body)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestCustomDatasetUntilEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/suppliers.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sort") != "id" {
			t.Errorf("query = %v", r.URL.Query())
		}
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(`{"suppliers": {"b": {"id": 12345678901234567, "title": "Acme", "tags": ["x", "y"]},
				"a": {"id": 1, "title": "", "tags": []}}}`))
		case "2":
			w.Write([]byte(`{"suppliers": [{"id": 3, "title": "Zeta", "tags": ["z"]}]}`))
		default:
			w.Write([]byte(`{"suppliers": false}`))
		}
	})
	e := newTestExporter(t, mux)
	def, err := LoadDatasetDefinition(writeDefinition(t, `
name: suppliers
endpoint: /admin/suppliers.json
query: {sort: id}
collection: $.suppliers
paging: until_empty
columns:
  - {name: ID, path: $.id}
  - {name: Title, path: $.title, default: N/A}
  - {name: Tags, path: $.tags}
`))
	if err != nil {
		t.Fatalf("LoadDatasetDefinition: %v", err)
	}

	table, err := e.CustomDataset(context.Background(), def)
	if err != nil {
		t.Fatalf("CustomDataset: %v", err)
	}
	want := [][]string{
		{"1", "N/A", ""},
		{"12345678901234567", "Acme", "x, y"},
		{"3", "Zeta", "z"},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("rows = %v; want %v", table.Rows, want)
	}
}

func TestCustomDatasetCount(t *testing.T) {
	var pages []string
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/tags.json", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page+"/"+r.URL.Query().Get("limit"))
		w.Write([]byte(`{"tags": [{"id": ` + page + `}], "meta": {"total": 3}}`))
	})
	e := newTestExporter(t, mux)
	def, err := LoadDatasetDefinition(writeDefinition(t, `
endpoint: /admin/tags.json
collection: $.tags
paging: count
limit: 1
count_path: $.meta.total
columns: [{name: ID, path: $.id}]
`))
	if err != nil {
		t.Fatalf("LoadDatasetDefinition: %v", err)
	}
	table, err := e.CustomDataset(context.Background(), def)
	if err != nil {
		t.Fatalf("CustomDataset: %v", err)
	}
	if got := strings.Join(pages, ","); got != "1/1,2/1,3/1" {
		t.Errorf("requested %s", got)
	}
	if table.Len() != 3 || table.Rows[2][0] != "3" {
		t.Errorf("rows = %v", table.Rows)
	}
}

func TestCollectionItemsMissingKey(t *testing.T) {
	doc := map[string]any{"data": false, "brands": map[string]any{"b": "second", "a": "first"}}
	for _, path := range []string{"$.suppliers", "$.data.items", "$.brands.x.y"} {
		items, err := collectionItems(path, doc)
		if err != nil || items != nil {
			t.Errorf("collectionItems(%q) = %v, %v; want nothing", path, items, err)
		}
	}

	items, err := collectionItems("$.brands", doc)
	if err != nil || !reflect.DeepEqual(items, []any{"first", "second"}) {
		t.Errorf("collectionItems($.brands) = %v, %v", items, err)
	}
	if _, err := collectionItems("$[", doc); err == nil {
		t.Error("malformed path: expected an error")
	}
}

func TestValueText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"a", "a"},
		{true, "true"},
		{[]any{"only"}, "only"},
		{[]any{map[string]any{"a": 1.0}, "b"}, `[{"a":1},"b"]`},
		{map[string]any{"k": "v"}, `{"k":"v"}`},
	}
	for _, tt := range tests {
		if got := valueText(tt.in); got != tt.want {
			t.Errorf("valueText(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestBundledDatasetDefinitions(t *testing.T) {
	paths, err := filepath.Glob("../datasets/*.yml")
	if err != nil || len(paths) == 0 {
		t.Fatalf("no dataset definitions found: %v", err)
	}
	for _, p := range paths {
		if _, err := LoadDatasetDefinition(p); err != nil {
			t.Errorf("%s: %v", p, err)
		}
	}
}
