package models

// Table is the flattened shape every export produces: a header and rows of
// text cells, plus the file name it is written under.
type Table struct {
	Name     string
	Filename string
	Header   []string
	Rows     [][]string
}

func NewTable(name, filename string, header ...string) *Table {
	return &Table{Name: name, Filename: filename, Header: header}
}

// AddRow appends a row, padding or truncating it to the header width.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Header))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

func (t *Table) Len() int { return len(t.Rows) }

// Records returns each row as a header -> value map.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			rec[h] = row[i]
		}
		out = append(out, rec)
	}
	return out
}
