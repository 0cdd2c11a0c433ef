package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexString holds the text form of any JSON scalar. The admin API returns
// some identifiers as numbers and others as strings, and booleans where a
// column expects text.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	s, err := flexText(data)
	if err != nil {
		return err
	}
	*f = FlexString(s)
	return nil
}

func (f FlexString) String() string { return string(f) }

// Or returns def when the value is empty.
func (f FlexString) Or(def string) string {
	if f == "" {
		return def
	}
	return string(f)
}

// FlexValue is a FlexString that remembers whether the JSON value was
// truthy: true, a non-zero number, a non-empty string, an array or an
// object. The string "0" is truthy; the number 0 is not.
type FlexValue struct {
	FlexString
	truthy bool
}

func (v *FlexValue) UnmarshalJSON(data []byte) error {
	if err := v.FlexString.UnmarshalJSON(data); err != nil {
		return err
	}
	v.truthy = truthy(data)
	return nil
}

func (v FlexValue) Truthy() bool { return v.truthy }

func truthy(data []byte) bool {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return false
	}
	switch data[0] {
	case 'n', 'f':
		return false
	case 't', '[', '{':
		return true
	case '"':
		return len(data) > 2
	}
	n, err := strconv.ParseFloat(string(data), 64)
	return err == nil && n != 0
}

func flexText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	case 't', 'f':
		return string(data), nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return "", err
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			s, err := flexText(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	case '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	// Integers keep their literal so large IDs never pass through float64.
	if !bytes.ContainsAny(data, ".eE") {
		return string(data), nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return "", fmt.Errorf("models: unexpected JSON value %q", data)
	}
	return strconv.FormatFloat(n, 'f', -1, 64), nil
}

// List decodes a JSON array, or the values of a JSON object in key order.
// Anything else (null, false, a string) decodes to an empty list. The API
// serialises empty or keyed collections inconsistently.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*l = nil
		return nil
	}

	switch data[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
	case '{':
		_, values, err := orderedObject(data)
		if err != nil {
			return err
		}
		items := make([]T, 0, len(values))
		for _, raw := range values {
			var item T
			if err := json.Unmarshal(raw, &item); err != nil {
				return err
			}
			items = append(items, item)
		}
		*l = items
	default:
		*l = nil
	}
	return nil
}

// Strings returns the text form of every element.
func (l List[T]) Strings() []string {
	out := make([]string, 0, len(l))
	for _, item := range l {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

func orderedObject(data []byte) ([]string, []json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("models: expected JSON object")
	}

	var keys []string
	var values []json.RawMessage
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("models: unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values = append(values, raw)
	}
	return keys, values, nil
}

func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}
