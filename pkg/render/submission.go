package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// HiddenField is a hidden input emitted alongside the visible fields.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken carries a CSRF token under the backend's input name.
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// DogID identifies the dog an intake form updates.
func DogID(id string) HiddenField {
	return Hidden("dog_id", id)
}

// MergeHiddenFields returns a copy of base with fields applied. Blank names
// are ignored; later fields win.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if key = strings.TrimSpace(key); key != "" {
			out[key] = value
		}
	}
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			out[name] = field.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields returns the fields sorted by name for deterministic
// output.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	clean := MergeHiddenFields(fields)
	if clean == nil {
		return nil
	}
	out := make([]HiddenField, 0, len(clean))
	for _, name := range slices.Sorted(maps.Keys(clean)) {
		out = append(out, HiddenField{Name: name, Value: clean[name]})
	}
	return out
}
