package services

import (
	"reflect"
	"testing"
)

func TestCompareText(t *testing.T) {
	tests := []struct {
		name          string
		first, second string
		want          []string
	}{
		{
			name:   "identical",
			first:  "1 a b\n2 c\n",
			second: "2   c\n\n1 a  b\n",
			want:   []string{NoDifferences},
		},
		{
			name:   "missing on both sides",
			first:  "1 a\n2 b\n",
			second: "2 b\n3 c\n",
			want:   []string{"ID 1 is MISSING in Dataset 2", "ID 3 is MISSING in Dataset 1"},
		},
		{
			name:   "different values",
			first:  "7 10.00 EUR\n",
			second: "7 12.00 EUR\n",
			want:   []string{"Difference in ID 7:\n   Dataset 1: 10.00 EUR\n   Dataset 2: 12.00 EUR"},
		},
		{
			name:   "duplicates keep the last values",
			first:  "1 old\n1 new\nlonely\n",
			second: "1 new\n",
			want:   []string{"Duplicate IDs found in Dataset 1: 1"},
		},
	}
	for _, tt := range tests {
		got, err := CompareText(tt.first, tt.second)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: got %q; want %q", tt.name, got, tt.want)
		}
	}
}
