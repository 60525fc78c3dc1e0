package fields

import "encoding/json"

// Template describes one form field independent of any entered value.
type Template struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []Option  `json:"options,omitempty"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
	MaxLength   *int      `json:"maxLength,omitempty"`

	// Default seeds Instance.Value for a freshly created instance.
	Default Value `json:"-"`
}

// Clone returns a deep copy of t.
func (t Template) Clone() Template {
	out := t
	out.Options = cloneOptions(t.Options)
	out.Min = cloneFloat(t.Min)
	out.Max = cloneFloat(t.Max)
	if t.MaxLength != nil {
		n := *t.MaxLength
		out.MaxLength = &n
	}
	out.Default = Coerce(t.Type, t.Default)
	return out
}

// Instance returns a new instance of t holding its default value.
func (t Template) Instance() Instance {
	clone := t.Clone()
	return Instance{
		Template: clone,
		Value:    clone.Default,
	}
}

// Instance is a template paired with the value currently entered for it plus
// optional server supplied guidance.
type Instance struct {
	Template

	Value       Value  `json:"value"`
	Description string `json:"description,omitempty"`
	AIText      string `json:"aiText,omitempty"`
	ErrorText   string `json:"errorText,omitempty"`
}

// Clone returns a deep copy of i.
func (i Instance) Clone() Instance {
	out := i
	out.Template = i.Template.Clone()
	out.Value = i.Value
	if i.Value.Kind() == KindList {
		out.Value = Strings(i.Value.list...)
	}
	return out
}

// UnmarshalJSON decodes an instance from the same lenient wire shape used for
// server declarations, so previously submitted field lists round-trip.
func (i *Instance) UnmarshalJSON(data []byte) error {
	var decl Declaration
	if err := json.Unmarshal(data, &decl); err != nil {
		return err
	}
	*i = decl.Instance()
	return nil
}

// List is an ordered sequence of instances with unique names.
type List []Instance

// Names returns the field names in order.
func (l List) Names() []string {
	out := make([]string, len(l))
	for idx, field := range l {
		out[idx] = field.Name
	}
	return out
}

// Index returns the position of the named field or -1.
func (l List) Index(name string) int {
	for idx, field := range l {
		if field.Name == name {
			return idx
		}
	}
	return -1
}

// Lookup returns the named field.
func (l List) Lookup(name string) (Instance, bool) {
	if idx := l.Index(name); idx >= 0 {
		return l[idx], true
	}
	return Instance{}, false
}

// Clone returns a deep copy of l.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for idx, field := range l {
		out[idx] = field.Clone()
	}
	return out
}

func cloneFloat(in *float64) *float64 {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

// Float returns a pointer to n, for populating Template bounds.
func Float(n float64) *float64 { return &n }

// Int returns a pointer to n, for populating Template.MaxLength.
func Int(n int) *int { return &n }
