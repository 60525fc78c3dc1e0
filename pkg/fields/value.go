package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the dynamic type held by a Value.
type Kind uint8

const (
	KindUnset Kind = iota
	KindString
	KindNumber
	KindList
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindList:
		return "list"
	case KindBool:
		return "bool"
	default:
		return "unset"
	}
}

// Value is the current value of a field. The zero Value is unset and encodes
// as JSON null.
type Value struct {
	kind Kind
	str  string
	num  float64
	list []string
	flag bool
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Strings returns a list value. The list is never nil, so it encodes as [] when
// empty.
func Strings(items ...string) Value {
	list := make([]string, len(items))
	copy(list, items)
	return Value{kind: KindList, list: list}
}

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Kind reports the dynamic type of v.
func (v Value) Kind() Kind { return v.kind }

// IsSet reports whether v holds any value.
func (v Value) IsSet() bool { return v.kind != KindUnset }

// Str returns the string form of v. Numbers use the shortest representation,
// lists are comma joined and unset values are empty.
func (v Value) Str() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindList:
		return strings.Join(v.list, ",")
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// Float returns the numeric form of v. Strings are parsed after trimming;
// ok is false when v holds no finite number, so NaN and infinities never
// count as numbers.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, finite(v.num)
	case KindString:
		trimmed := strings.TrimSpace(v.str)
		if trimmed == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || !finite(n) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func finite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

// Items returns a copy of the list held by v, or nil for non-list values.
func (v Value) Items() []string {
	if v.kind != KindList {
		return nil
	}
	return slices.Clone(v.list)
}

// Flag returns the boolean held by v.
func (v Value) Flag() bool { return v.kind == KindBool && v.flag }

// IsEmpty reports whether v is unset, an empty string or an empty list.
// Numbers and booleans are never empty.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindUnset:
		return true
	case KindString:
		return v.str == ""
	case KindList:
		return len(v.list) == 0
	default:
		return false
	}
}

// Any returns v as a plain Go value suitable for templates and JSON trees.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item
		}
		return out
	case KindBool:
		return v.flag
	default:
		return nil
	}
}

// Equal reports whether v and other hold the same kind and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindList:
		return slices.Equal(v.list, other.list)
	case KindBool:
		return v.flag == other.flag
	default:
		return true
	}
}

// GoString keeps test failure output readable.
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return fmt.Sprintf("fields.String(%q)", v.str)
	case KindNumber:
		return fmt.Sprintf("fields.Number(%v)", v.num)
	case KindList:
		return fmt.Sprintf("fields.Strings(%q)", v.list)
	case KindBool:
		return fmt.Sprintf("fields.Bool(%t)", v.flag)
	default:
		return "fields.Value{}"
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if !finite(v.num) {
			return json.Marshal(v.Str())
		}
		return json.Marshal(v.num)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindBool:
		return json.Marshal(v.flag)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler. Arrays keep their scalar items
// as strings; objects decode as unset.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Value{}
		return nil
	}

	var raw any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("fields: decode value: %w", err)
	}
	*v = FromAny(raw)
	return nil
}

// FromAny converts a decoded JSON tree node into a Value.
func FromAny(raw any) Value {
	switch typed := raw.(type) {
	case nil:
		return Value{}
	case Value:
		return typed
	case string:
		return String(typed)
	case bool:
		return Bool(typed)
	case json.Number:
		n, err := typed.Float64()
		if err != nil {
			return String(typed.String())
		}
		return Number(n)
	case float64:
		return Number(typed)
	case float32:
		return Number(float64(typed))
	case int:
		return Number(float64(typed))
	case int64:
		return Number(float64(typed))
	case []string:
		return Strings(typed...)
	case []any:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			if item == nil {
				continue
			}
			items = append(items, scalarString(item))
		}
		return Strings(items...)
	default:
		return Value{}
	}
}

func scalarString(item any) string {
	switch typed := item.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}
