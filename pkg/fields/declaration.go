package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Declaration is a field definition as declared by the server. Nil attributes
// were absent from the payload; Options is nil when absent and non-nil (even
// if empty) when present.
type Declaration struct {
	Name        string
	Label       *string
	Type        *string
	Required    *bool
	Placeholder *string
	Options     []Option
	Min         *float64
	Max         *float64
	MaxLength   *int
	Value       *Value
	Description *string
	AIText      *string
	ErrorText   *string
}

type wireDeclaration struct {
	Name        string          `json:"name"`
	Label       *string         `json:"label"`
	Type        *string         `json:"type"`
	Required    json.RawMessage `json:"required"`
	Placeholder *string         `json:"placeholder"`
	Options     []Option        `json:"options"`
	Min         json.RawMessage `json:"min"`
	Max         json.RawMessage `json:"max"`
	MaxLength   json.RawMessage `json:"maxLength"`
	Value       *Value          `json:"value"`
	Description *string         `json:"description"`
	AIText      *string         `json:"aiText"`
	ErrorText   *string         `json:"errorText"`
}

// UnmarshalJSON implements json.Unmarshaler. Numeric bounds and the required
// flag accept either JSON numbers/booleans or their string forms; anything
// unparseable counts as absent.
func (d *Declaration) UnmarshalJSON(data []byte) error {
	var wire wireDeclaration
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("fields: decode declaration: %w", err)
	}
	*d = Declaration{
		Name:        strings.TrimSpace(wire.Name),
		Label:       wire.Label,
		Type:        wire.Type,
		Required:    parseBoolRaw(wire.Required),
		Placeholder: wire.Placeholder,
		Options:     wire.Options,
		Min:         parseFloatRaw(wire.Min),
		Max:         parseFloatRaw(wire.Max),
		Description: wire.Description,
		AIText:      wire.AIText,
		ErrorText:   wire.ErrorText,
	}
	if n := parseFloatRaw(wire.MaxLength); n != nil && *n >= 0 {
		d.MaxLength = Int(int(*n))
	}
	if wire.Value != nil && wire.Value.IsSet() {
		v := *wire.Value
		d.Value = &v
	}
	return nil
}

// MarshalJSON implements json.Marshaler, emitting only present attributes.
func (d Declaration) MarshalJSON() ([]byte, error) {
	out := map[string]any{"name": d.Name}
	setIf := func(key string, ok bool, value any) {
		if ok {
			out[key] = value
		}
	}
	setIf("label", d.Label != nil, deref(d.Label))
	setIf("type", d.Type != nil, deref(d.Type))
	setIf("required", d.Required != nil, d.Required != nil && *d.Required)
	setIf("placeholder", d.Placeholder != nil, deref(d.Placeholder))
	setIf("options", d.Options != nil, d.Options)
	setIf("min", d.Min != nil, d.Min)
	setIf("max", d.Max != nil, d.Max)
	setIf("maxLength", d.MaxLength != nil, d.MaxLength)
	setIf("value", d.Value != nil, d.Value)
	setIf("description", d.Description != nil, deref(d.Description))
	setIf("aiText", d.AIText != nil, deref(d.AIText))
	setIf("errorText", d.ErrorText != nil, deref(d.ErrorText))
	return json.Marshal(out)
}

// ResolvedType returns the declared type, resolving legacy names, or fallback
// when no type was declared.
func (d Declaration) ResolvedType(fallback FieldType) FieldType {
	if d.Type == nil || strings.TrimSpace(*d.Type) == "" {
		return fallback
	}
	return ParseType(*d.Type, len(d.Options) > 0)
}

// Instance builds an instance purely from the declaration. Absent values
// default to the zero value of the resolved type.
func (d Declaration) Instance() Instance {
	t := d.ResolvedType(TypeText)
	inst := Instance{
		Template: Template{
			Name:        d.Name,
			Label:       deref(d.Label),
			Type:        t,
			Required:    d.Required != nil && *d.Required,
			Placeholder: deref(d.Placeholder),
			Options:     cloneOptions(d.Options),
			Min:         cloneFloat(d.Min),
			Max:         cloneFloat(d.Max),
			Default:     ZeroValue(t),
		},
		Description: deref(d.Description),
		AIText:      deref(d.AIText),
		ErrorText:   deref(d.ErrorText),
	}
	if d.MaxLength != nil {
		inst.MaxLength = Int(*d.MaxLength)
	}
	inst.Value = inst.Default
	if d.Value != nil {
		inst.Value = Coerce(t, *d.Value)
	}
	return inst
}

// Overlay shallow merges the declaration over template t. Every present
// attribute wins except the name and the required flag, which stay with the
// template. The value is the template default unless the declaration supplied
// one, and is always coerced to the combined type.
func (d Declaration) Overlay(t Template) Instance {
	inst := t.Instance()
	inst.Type = d.ResolvedType(t.Type)
	if d.Label != nil {
		inst.Label = *d.Label
	}
	if d.Placeholder != nil {
		inst.Placeholder = *d.Placeholder
	}
	if d.Options != nil {
		inst.Options = cloneOptions(d.Options)
	}
	if d.Min != nil {
		inst.Min = cloneFloat(d.Min)
	}
	if d.Max != nil {
		inst.Max = cloneFloat(d.Max)
	}
	if d.MaxLength != nil {
		inst.MaxLength = Int(*d.MaxLength)
	}
	if d.Description != nil {
		inst.Description = *d.Description
	}
	if d.AIText != nil {
		inst.AIText = *d.AIText
	}
	if d.ErrorText != nil {
		inst.ErrorText = *d.ErrorText
	}
	value := t.Default
	if d.Value != nil {
		value = *d.Value
	}
	inst.Value = Coerce(inst.Type, value)
	inst.Default = Coerce(inst.Type, t.Default)
	return inst
}

// DecodeDeclarations decodes a JSON array of field declarations.
func DecodeDeclarations(data []byte) ([]Declaration, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var out []Declaration
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("fields: decode declarations: %w", err)
	}
	return out, nil
}

// Declare converts an instance back into a fully populated declaration.
func Declare(inst Instance) Declaration {
	t := string(inst.Type)
	value := inst.Value
	d := Declaration{
		Name:        inst.Name,
		Label:       ptr(inst.Label),
		Type:        &t,
		Required:    ptr(inst.Required),
		Placeholder: ptr(inst.Placeholder),
		Options:     cloneOptions(inst.Options),
		Min:         cloneFloat(inst.Min),
		Max:         cloneFloat(inst.Max),
		Value:       &value,
		Description: ptr(inst.Description),
		AIText:      ptr(inst.AIText),
		ErrorText:   ptr(inst.ErrorText),
	}
	if inst.MaxLength != nil {
		d.MaxLength = Int(*inst.MaxLength)
	}
	return d
}

func parseFloatRaw(raw json.RawMessage) *float64 {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(trimmed, &n); err == nil {
		return &n
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseBoolRaw(raw json.RawMessage) *bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var b bool
	if err := json.Unmarshal(trimmed, &b); err == nil {
		return &b
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &parsed
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func ptr[T any](v T) *T { return &v }
