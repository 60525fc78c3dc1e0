package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrMalformed is returned by Normalize when the input is not a JSON object.
var ErrMalformed = errors.New("protocol: document must be a JSON object")

type entry struct {
	key string
	raw json.RawMessage
}

// Normalize maps a stored protocol into the canonical Document.
//
// Protected items without an id get "{prefix}-{n}". Missing (or null)
// protected sections default to DefaultItems. An explicit custom_sections
// array is read first; every other top level key is folded into a custom
// section in document order when its value is an array of items or an object
// holding an items array. Other values are skipped.
func Normalize(raw []byte) (Document, error) {
	entries, err := topLevel(raw)
	if err != nil {
		return Document{}, err
	}

	var doc Document
	present := make(map[string]json.RawMessage, len(entries))
	for _, e := range entries {
		present[e.key] = e.raw
	}

	for _, key := range protectedKeys {
		target, _ := doc.protected(key)
		value, ok := present[key]
		if !ok || isNull(value) {
			*target = DefaultItems(key)
			continue
		}
		items, _ := coerceItems(value)
		*target = assignIDs(items, itemPrefixes[key])
	}

	if value, ok := present[keyCustomSections]; ok {
		var sections []json.RawMessage
		if err := json.Unmarshal(value, &sections); err == nil {
			for i, rawSection := range sections {
				section, ok := decodeSection(rawSection, fmt.Sprintf("custom-%d", i+1), fmt.Sprintf("Section %d", i+1))
				if ok {
					doc.appendCustom(section)
				}
			}
		}
	}

	for _, e := range entries {
		if IsProtected(e.key) || e.key == keyCustomSections {
			continue
		}
		section, ok := decodeSection(e.raw, "custom-"+e.key, SectionName(e.key))
		if ok {
			doc.appendCustom(section)
		}
	}
	return doc, nil
}

// SectionName derives a display name from a document key, for example
// "extra_tips" becomes "Extra Tips".
func SectionName(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func (d *Document) appendCustom(section Section) {
	base := section.ID
	for n := 2; d.customIndex(section.ID) >= 0; n++ {
		section.ID = fmt.Sprintf("%s-%d", base, n)
	}
	section.Items = assignIDs(section.Items, section.ID)
	d.CustomSections = append(d.CustomSections, section)
}

// topLevel reads the keys of a JSON object in document order. A repeated key
// keeps its first value and position.
func topLevel(raw []byte) ([]entry, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("protocol: decode: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrMalformed
	}
	var out []entry
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("protocol: decode: %w", err)
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("protocol: decode %q: %w", key, err)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, entry{key: key, raw: value})
	}
	return out, nil
}

type wireSection struct {
	ID    json.RawMessage `json:"id"`
	Name  *string         `json:"section_name"`
	Items json.RawMessage `json:"items"`
}

// decodeSection accepts an items array or an object with an items array.
func decodeSection(raw json.RawMessage, id, name string) (Section, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Section{}, false
	}
	switch trimmed[0] {
	case '[':
		items, ok := coerceItems(trimmed)
		if !ok {
			return Section{}, false
		}
		return Section{ID: id, Name: name, Items: items}, true
	case '{':
		var wire wireSection
		if err := json.Unmarshal(trimmed, &wire); err != nil || len(wire.Items) == 0 {
			return Section{}, false
		}
		items, ok := coerceItems(wire.Items)
		if !ok {
			return Section{}, false
		}
		if explicit := scalar(wire.ID); explicit != "" {
			id = explicit
		}
		if wire.Name != nil && strings.TrimSpace(*wire.Name) != "" {
			name = *wire.Name
		}
		return Section{ID: id, Name: name, Items: items}, true
	default:
		return Section{}, false
	}
}

type wireItem struct {
	ID          json.RawMessage `json:"id"`
	Title       json.RawMessage `json:"title"`
	Description json.RawMessage `json:"description"`
}

// coerceItems decodes an array of items. Objects map their id, title and
// description; bare strings become titles; other elements are dropped.
func coerceItems(raw json.RawMessage) ([]Item, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []Item{}, false
	}
	if trimmed[0] == '{' {
		var wire wireSection
		if err := json.Unmarshal(trimmed, &wire); err == nil && len(wire.Items) > 0 {
			return coerceItems(wire.Items)
		}
		return []Item{}, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return []Item{}, false
	}
	items := make([]Item, 0, len(elems))
	for _, elem := range elems {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 {
			continue
		}
		switch elem[0] {
		case '{':
			var wire wireItem
			if err := json.Unmarshal(elem, &wire); err != nil {
				continue
			}
			items = append(items, Item{
				ID:          scalar(wire.ID),
				Title:       scalar(wire.Title),
				Description: scalar(wire.Description),
			})
		case '"':
			var title string
			if err := json.Unmarshal(elem, &title); err == nil {
				items = append(items, Item{Title: title})
			}
		}
	}
	return items, true
}

func assignIDs(items []Item, prefix string) []Item {
	if items == nil {
		return []Item{}
	}
	for i := range items {
		if strings.TrimSpace(items[i].ID) == "" {
			items[i].ID = fmt.Sprintf("%s-%d", prefix, i+1)
		}
	}
	return items
}

// scalar renders a JSON string, number or boolean as text.
func scalar(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || isNull(trimmed) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(trimmed, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
