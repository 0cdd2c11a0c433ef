package models

import "encoding/json"

// LangEntry is the per-language block the admin API nests under a
// two-letter key ("us", "nl", ...) inside categories, custom fields and
// products.
type LangEntry struct {
	ID        FlexString `json:"id"`
	Slug      FlexString `json:"slug"`
	Title     FlexString `json:"title"`
	Fulltitle FlexString `json:"fulltitle"`
}

// LangMap keeps every object-valued key of a record that decodes as a
// LangEntry, in document order.
type LangMap struct {
	order   []string
	entries map[string]LangEntry
}

// ParseLangMap collects the language blocks of a JSON object.
func ParseLangMap(data []byte) (LangMap, error) {
	var m LangMap
	if !isObject(data) {
		return m, nil
	}
	keys, values, err := orderedObject(data)
	if err != nil {
		return m, err
	}
	m.entries = make(map[string]LangEntry)
	for i, key := range keys {
		if !isObject(values[i]) {
			continue
		}
		var entry LangEntry
		if err := json.Unmarshal(values[i], &entry); err != nil {
			continue
		}
		m.order = append(m.order, key)
		m.entries[key] = entry
	}
	return m, nil
}

func (m LangMap) Get(lang string) (LangEntry, bool) {
	e, ok := m.entries[lang]
	return e, ok
}

// Title returns the title for lang, or "" when absent.
func (m LangMap) Title(lang string) string {
	return string(m.entries[lang].Title)
}

// FirstTitled returns the first language key whose block has a title.
func (m LangMap) FirstTitled() (string, bool) {
	for _, lang := range m.order {
		if m.entries[lang].Title != "" {
			return lang, true
		}
	}
	return "", false
}

func (m LangMap) Languages() []string {
	return append([]string(nil), m.order...)
}
