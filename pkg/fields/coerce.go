package fields

import (
	"strconv"
	"strings"
)

// ZeroValue returns the empty value for a field type: an empty list for
// checkbox-multi, false for checkbox-bool and the empty string otherwise.
// Number fields use the empty string as their "not provided" sentinel.
func ZeroValue(t FieldType) Value {
	switch t {
	case TypeCheckboxMulti:
		return Strings()
	case TypeCheckboxBool:
		return Bool(false)
	default:
		return String("")
	}
}

// Coerce converts v into the representation expected for t.
//
// checkbox-multi values that are not lists become an empty list. Number
// values that parse become numbers; other strings are kept so validation can
// report them. checkbox-bool values become booleans. Every other type holds a
// string.
func Coerce(t FieldType, v Value) Value {
	switch t {
	case TypeCheckboxMulti:
		if v.Kind() == KindList {
			return Strings(v.list...)
		}
		return Strings()
	case TypeNumber:
		switch v.Kind() {
		case KindNumber:
			if _, ok := v.Float(); !ok {
				return String(v.Str())
			}
			return v
		case KindString:
			if n, ok := v.Float(); ok {
				return Number(n)
			}
			return v
		default:
			return String("")
		}
	case TypeCheckboxBool:
		switch v.Kind() {
		case KindBool:
			return v
		case KindString:
			b, err := strconv.ParseBool(strings.TrimSpace(v.str))
			return Bool(err == nil && b)
		case KindNumber:
			return Bool(v.num != 0)
		default:
			return Bool(false)
		}
	default:
		if v.Kind() == KindUnset {
			return String("")
		}
		return String(v.Str())
	}
}
