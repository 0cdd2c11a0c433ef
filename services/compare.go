package services

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
)

// NoDifferences is the single result line when two datasets agree.
const NoDifferences = "No Differences Found"

// Dataset is a whitespace separated report keyed by its first column.
type Dataset struct {
	keys       []string
	values     map[string][]string
	duplicates []string
}

// ParseDataset reads one record per line. Lines with fewer than two fields
// are ignored; a repeated key replaces the earlier values and is recorded
// as a duplicate.
func ParseDataset(r io.Reader) (*Dataset, error) {
	d := &Dataset{values: make(map[string][]string)}
	dup := make(map[string]bool)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		key := fields[0]
		if _, seen := d.values[key]; seen {
			if !dup[key] {
				dup[key] = true
				d.duplicates = append(d.duplicates, key)
			}
		} else {
			d.keys = append(d.keys, key)
		}
		d.values[key] = fields[1:]
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("services: read dataset: %w", err)
	}
	return d, nil
}

// Len is the number of distinct keys.
func (d *Dataset) Len() int { return len(d.keys) }

// Compare lists duplicates in either dataset, then every key missing from
// one side or whose values differ. Keys are visited in first-seen order of
// the first dataset, followed by keys only the second has.
func Compare(first, second *Dataset) []string {
	var out []string
	if len(first.duplicates) > 0 {
		out = append(out, "Duplicate IDs found in Dataset 1: "+strings.Join(first.duplicates, ", "))
	}
	if len(second.duplicates) > 0 {
		out = append(out, "Duplicate IDs found in Dataset 2: "+strings.Join(second.duplicates, ", "))
	}

	keys := slices.Clone(first.keys)
	for _, k := range second.keys {
		if _, ok := first.values[k]; !ok {
			keys = append(keys, k)
		}
	}
	for _, k := range keys {
		v1, in1 := first.values[k]
		v2, in2 := second.values[k]
		switch {
		case !in1:
			out = append(out, fmt.Sprintf("ID %s is MISSING in Dataset 1", k))
		case !in2:
			out = append(out, fmt.Sprintf("ID %s is MISSING in Dataset 2", k))
		case !slices.Equal(v1, v2):
			out = append(out, fmt.Sprintf("Difference in ID %s:\n   Dataset 1: %s\n   Dataset 2: %s",
				k, strings.Join(v1, " "), strings.Join(v2, " ")))
		}
	}
	if len(out) == 0 {
		return []string{NoDifferences}
	}
	return out
}

// CompareText parses both inputs and compares them.
func CompareText(first, second string) ([]string, error) {
	a, err := ParseDataset(strings.NewReader(first))
	if err != nil {
		return nil, err
	}
	b, err := ParseDataset(strings.NewReader(second))
	if err != nil {
		return nil, err
	}
	return Compare(a, b), nil
}
