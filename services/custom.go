package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"gopkg.in/yaml.v3"

	"admin-exporter/admin"
	"admin-exporter/models"
)

// Paging modes of a dataset definition.
const (
	PagingNone       = "none"
	PagingUntilEmpty = "until_empty"
	PagingCount      = "count"
)

// DatasetDefinition describes an export of any admin list endpoint
// without code: where the items are and which values become columns.
type DatasetDefinition struct {
	Name       string             `yaml:"name"`
	Endpoint   string             `yaml:"endpoint"`
	Query      map[string]string  `yaml:"query"`
	Collection string             `yaml:"collection"`
	Paging     string             `yaml:"paging"`
	Limit      int                `yaml:"limit"`
	CountPath  string             `yaml:"count_path"`
	Filename   string             `yaml:"filename"`
	Columns    []ColumnDefinition `yaml:"columns"`
}

// ColumnDefinition is one output column. Path is evaluated against each
// item; Default replaces a missing or empty value.
type ColumnDefinition struct {
	Name    string `yaml:"name"`
	Path    string `yaml:"path"`
	Default string `yaml:"default"`
}

// LoadDatasetDefinition reads and validates a YAML dataset definition.
func LoadDatasetDefinition(path string) (*DatasetDefinition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("services: read dataset %s: %w", path, err)
	}
	var def DatasetDefinition
	if err := yaml.Unmarshal(b, &def); err != nil {
		return nil, fmt.Errorf("services: parse dataset %s: %w", path, err)
	}
	if err := def.normalize(); err != nil {
		return nil, fmt.Errorf("services: dataset %s: %w", path, err)
	}
	return &def, nil
}

func (d *DatasetDefinition) normalize() error {
	d.Endpoint = strings.TrimSpace(d.Endpoint)
	if d.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if !strings.HasPrefix(d.Endpoint, "/") {
		d.Endpoint = "/" + d.Endpoint
	}
	if d.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("at least one column is required")
	}
	for i, c := range d.Columns {
		if strings.TrimSpace(c.Path) == "" {
			return fmt.Errorf("column %d: path is required", i+1)
		}
		if c.Name == "" {
			d.Columns[i].Name = c.Path
		}
	}
	switch d.Paging {
	case "":
		d.Paging = PagingNone
	case PagingNone, PagingUntilEmpty, PagingCount:
	default:
		return fmt.Errorf("unknown paging %q (want none, until_empty or count)", d.Paging)
	}
	if d.Paging == PagingCount {
		if d.Limit <= 0 {
			d.Limit = countPageLimit
		}
		if d.CountPath == "" {
			d.CountPath = "$.links.count"
		}
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(strings.Trim(d.Endpoint, "/"), ".json")
		d.Name = strings.ReplaceAll(strings.TrimPrefix(d.Name, "admin/"), "/", "_")
	}
	if d.Filename == "" {
		d.Filename = d.Name + ".csv"
	}
	return nil
}

// Header is the column names in order.
func (d *DatasetDefinition) Header() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

func (d *DatasetDefinition) query(page int) url.Values {
	q := url.Values{}
	for k, v := range d.Query {
		q.Set(k, v)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if d.Limit > 0 {
		q.Set("limit", strconv.Itoa(d.Limit))
	}
	return q
}

// CustomDataset exports the endpoint described by def.
func (e *Exporter) CustomDataset(ctx context.Context, def *DatasetDefinition) (*models.Table, error) {
	table := models.NewTable(def.Name, def.Filename, def.Header()...)

	addPage := func(doc any) (int, error) {
		items, err := collectionItems(def.Collection, doc)
		if err != nil {
			return 0, err
		}
		for _, item := range items {
			table.AddRow(def.row(item)...)
		}
		return len(items), nil
	}
	fetch := func(ctx context.Context, page int) (any, error) {
		body, err := e.client.GetRaw(ctx, def.Endpoint, def.query(page))
		if err != nil {
			return nil, err
		}
		return decodeDocument(body)
	}

	var err error
	switch def.Paging {
	case PagingNone:
		var doc any
		if doc, err = fetch(ctx, 0); err == nil {
			_, err = addPage(doc)
		}
	case PagingUntilEmpty:
		var pages int
		pages, err = admin.PageUntilEmpty(ctx, func(ctx context.Context, page int) (int, error) {
			doc, err := fetch(ctx, page)
			if err != nil {
				return 0, err
			}
			return addPage(doc)
		})
		if err != nil && pages > 0 && ctx.Err() == nil {
			e.logger.Error("[custom] %s stopped after %d pages: %v", def.Name, pages, err)
			err = nil
		}
	case PagingCount:
		err = e.pageByCount(ctx, def.Name, def.Limit, func(ctx context.Context, page int) (models.Links, error) {
			doc, err := fetch(ctx, page)
			if err != nil {
				return models.Links{}, err
			}
			if _, err := addPage(doc); err != nil {
				return models.Links{}, err
			}
			var links models.Links
			if page == 1 {
				links.Count = countAt(def.CountPath, doc)
			}
			return links, nil
		})
	}
	if err != nil {
		return nil, fmt.Errorf("services: dataset %s: %w", def.Name, err)
	}
	e.logger.Info("[custom] %s: %d rows", def.Name, table.Len())
	return table, nil
}

func (d *DatasetDefinition) row(item any) []string {
	row := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		row[i] = c.Default
		v, err := jsonpath.Get(c.Path, item)
		if err != nil || isEmptyValue(v) {
			continue
		}
		if s := valueText(v); s != "" {
			row[i] = s
		}
	}
	return row
}

// decodeDocument keeps numbers as json.Number so large IDs are not
// rounded through float64.
func decodeDocument(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return doc, nil
}

// collectionItems resolves the item list. An object collection yields its
// values ordered by key; a missing or empty collection yields nothing.
func collectionItems(path string, doc any) ([]any, error) {
	if !hasKeys(path, doc) {
		return nil, nil
	}
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", path, err)
	}
	switch t := v.(type) {
	case []any:
		return t, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]any, 0, len(keys))
		for _, k := range keys {
			items = append(items, t[k])
		}
		return items, nil
	}
	return nil, nil
}

// hasKeys reports whether every key of a dotted path such as $.data.items
// is present in doc. Paths with other selectors are left to jsonpath.
func hasKeys(path string, doc any) bool {
	rest, ok := strings.CutPrefix(path, "$.")
	if !ok || rest == "" || strings.HasPrefix(rest, ".") || strings.ContainsAny(rest, "[]*?()@") {
		return true
	}
	cur := doc
	for _, key := range strings.Split(rest, ".") {
		obj, isObj := cur.(map[string]any)
		if !isObj {
			return false
		}
		if cur, ok = obj[key]; !ok {
			return false
		}
	}
	return true
}

func countAt(path string, doc any) int {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(valueText(v)))
	if err != nil {
		return 0
	}
	return n
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

// valueText renders a JSON value as a cell: scalars as text, single
// element results unwrapped, lists of scalars joined with ", ", anything
// else as compact JSON.
func valueText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool, float64, int:
		return fmt.Sprint(t)
	case []any:
		if len(t) == 1 {
			return valueText(t[0])
		}
		parts := make([]string, 0, len(t))
		for _, item := range t {
			switch item.(type) {
			case map[string]any, []any:
				b, _ := json.Marshal(t)
				return string(b)
			}
			parts = append(parts, valueText(item))
		}
		return strings.Join(parts, ", ")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
