package merge

import "github.com/goliatone/go-pawhealth/pkg/fields"

// ordered is an insertion ordered map of instances keyed by field name.
type ordered struct {
	keys   []string
	values map[string]fields.Instance
}

func newOrdered(capacity int) *ordered {
	return &ordered{
		keys:   make([]string, 0, capacity),
		values: make(map[string]fields.Instance, capacity),
	}
}

func (o *ordered) has(name string) bool {
	_, ok := o.values[name]
	return ok
}

// put stores field, keeping the position of the first insertion of its name.
func (o *ordered) put(field fields.Instance) {
	if !o.has(field.Name) {
		o.keys = append(o.keys, field.Name)
	}
	o.values[field.Name] = field
}

func (o *ordered) list() fields.List {
	out := make(fields.List, 0, len(o.keys))
	for _, key := range o.keys {
		out = append(out, o.values[key])
	}
	return out
}
