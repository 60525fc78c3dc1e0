// Package merge combines server-declared form fields with the required intake
// templates into a single ordered field list.
package merge

import (
	"github.com/goliatone/go-pawhealth/pkg/fields"
)

// Merge returns the merged field list for the given server declarations and
// previously rendered fields.
//
// The result holds the required templates in fixed order (each overlaid by a
// same-name declaration when present), then declarations for names outside
// the required set in declared order, then existing fields whose names are
// still missing, in their prior order. Merge never fails; with no input it
// returns the required templates.
func Merge(server []fields.Declaration, existing fields.List) fields.List {
	declared := indexDeclarations(server)

	out := newOrdered(len(server) + len(existing) + 7)

	// Pass one: required templates, then server-only declarations.
	for _, tmpl := range fields.Required() {
		if decl, ok := declared.get(tmpl.Name); ok {
			out.put(decl.Overlay(tmpl))
			continue
		}
		out.put(tmpl.Instance())
	}
	for _, name := range declared.keys {
		if out.has(name) {
			continue
		}
		decl, _ := declared.get(name)
		out.put(decl.Instance())
	}

	// Pass two: carry over existing fields not yet present.
	for _, field := range existing {
		if field.Name == "" || out.has(field.Name) {
			continue
		}
		carried := field.Clone()
		carried.Value = fields.Coerce(carried.Type, carried.Value)
		out.put(carried)
	}

	return out.list()
}

func indexDeclarations(server []fields.Declaration) *orderedDecls {
	idx := &orderedDecls{byName: make(map[string]fields.Declaration, len(server))}
	for _, decl := range server {
		if decl.Name == "" {
			continue
		}
		if _, seen := idx.byName[decl.Name]; seen {
			continue
		}
		idx.byName[decl.Name] = decl
		idx.keys = append(idx.keys, decl.Name)
	}
	return idx
}

type orderedDecls struct {
	keys   []string
	byName map[string]fields.Declaration
}

func (o *orderedDecls) get(name string) (fields.Declaration, bool) {
	decl, ok := o.byName[name]
	return decl, ok
}
