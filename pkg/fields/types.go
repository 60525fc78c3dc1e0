package fields

import "strings"

// FieldType enumerates the input kinds a form field can take.
type FieldType string

const (
	TypeText          FieldType = "text"
	TypeTextarea      FieldType = "textarea"
	TypeNumber        FieldType = "number"
	TypeSelect        FieldType = "select"
	TypeCheckboxMulti FieldType = "checkbox-multi"
	TypeCheckboxBool  FieldType = "checkbox-bool"
	TypeRadio         FieldType = "radio"
	TypeRange         FieldType = "range"
	TypeDate          FieldType = "date"
	TypeEmail         FieldType = "email"
	TypeTel           FieldType = "tel"
	TypeURL           FieldType = "url"
)

// legacyCheckbox is the wire name older onboarding forms use for both checkbox
// flavours.
const legacyCheckbox = "checkbox"

var allTypes = []FieldType{
	TypeText,
	TypeTextarea,
	TypeNumber,
	TypeSelect,
	TypeCheckboxMulti,
	TypeCheckboxBool,
	TypeRadio,
	TypeRange,
	TypeDate,
	TypeEmail,
	TypeTel,
	TypeURL,
}

// Types returns every supported field type in palette order.
func Types() []FieldType {
	out := make([]FieldType, len(allTypes))
	copy(out, allTypes)
	return out
}

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	for _, candidate := range allTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// HasOptions reports whether fields of this type carry an option list.
func (t FieldType) HasOptions() bool {
	switch t {
	case TypeSelect, TypeRadio, TypeCheckboxMulti:
		return true
	default:
		return false
	}
}

// ParseType resolves a wire type name. The legacy "checkbox" name becomes
// checkbox-multi when the field has options and checkbox-bool otherwise.
// Unknown names resolve to text.
func ParseType(raw string, hasOptions bool) FieldType {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == legacyCheckbox {
		if hasOptions {
			return TypeCheckboxMulti
		}
		return TypeCheckboxBool
	}
	t := FieldType(name)
	if !t.Valid() {
		return TypeText
	}
	return t
}

// Option is a single choice for select, radio and checkbox-multi fields.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func cloneOptions(in []Option) []Option {
	if in == nil {
		return nil
	}
	out := make([]Option, len(in))
	copy(out, in)
	return out
}
