package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-pawhealth/pkg/fields"
	"github.com/goliatone/go-pawhealth/pkg/intake"
	"github.com/goliatone/go-pawhealth/pkg/merge"
)

// Extension keys written on exported properties so a later import restores
// the builder's ordering and exact element types.
const (
	extOrder     = "x-pawhealth-order"
	extFieldType = "x-pawhealth-type"
)

// SubmitPath and SubmitOperationID identify the exported submit operation.
const (
	SubmitPath        = "/onboarding-form/submit"
	SubmitOperationID = "submitOnboardingForm"
)

// Document builds an OpenAPI document with a single operation whose request
// body describes the onboarding form as merged for intake.
func (b *Builder) Document() *openapi3.T {
	list := merge.Merge(Declarations(b.fields), nil)
	schema := intake.FormSchema(list)
	schema.Title = "OnboardingForm"
	for i, field := range list {
		prop := schema.Properties[field.Name].Value
		prop.Extensions = map[string]any{
			extOrder:     i,
			extFieldType: string(field.Type),
		}
	}

	op := openapi3.NewOperation()
	op.OperationID = SubmitOperationID
	op.Summary = "Submit the onboarding form"
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(schema),
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Submission stored"),
		}),
	)

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "PawHealth onboarding form",
			Version: "1.0.0",
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath(SubmitPath, &openapi3.PathItem{Post: op}),
		),
	}
}

// ExportOpenAPI returns Document encoded as indented JSON.
func (b *Builder) ExportOpenAPI() ([]byte, error) {
	out, err := json.MarshalIndent(b.Document(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("builder: export openapi: %w", err)
	}
	return out, nil
}

// ImportOpenAPI appends one field per top level property of the JSON request
// body of operationID. An empty operationID picks the first operation with a
// request body in path order.
func (b *Builder) ImportOpenAPI(ctx context.Context, raw []byte, operationID string) ([]Field, error) {
	if len(raw) == 0 {
		return nil, errors.New("builder: openapi document is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("builder: load openapi: %w", err)
	}
	schema, err := requestSchema(doc, operationID)
	if err != nil {
		return nil, err
	}

	required := map[string]bool{}
	for _, name := range schema.Required {
		required[name] = true
	}
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		oi, okI := order(schema.Properties[names[i]])
		oj, okJ := order(schema.Properties[names[j]])
		switch {
		case okI && okJ && oi != oj:
			return oi < oj
		case okI != okJ:
			return okI
		default:
			return names[i] < names[j]
		}
	})

	var added []Field
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil || b.nameTaken(name, "") {
			continue
		}
		inst, ok := instanceFromSchema(name, ref.Value, required[name])
		if !ok {
			continue
		}
		field := Field{ID: b.uniqueID(), Instance: inst}
		b.fields = append(b.fields, field)
		added = append(added, field.Clone())
	}
	return added, nil
}

func requestSchema(doc *openapi3.T, operationID string) (*openapi3.Schema, error) {
	if doc.Paths == nil {
		return nil, errors.New("builder: openapi document has no paths")
	}
	for _, path := range doc.Paths.InMatchingOrder() {
		item := doc.Paths.Value(path)
		if item == nil {
			continue
		}
		for _, op := range []*openapi3.Operation{item.Post, item.Put, item.Patch} {
			if op == nil || (operationID != "" && op.OperationID != operationID) {
				continue
			}
			if op.RequestBody == nil || op.RequestBody.Value == nil {
				continue
			}
			media := op.RequestBody.Value.Content.Get("application/json")
			if media == nil || media.Schema == nil || media.Schema.Value == nil {
				continue
			}
			return media.Schema.Value, nil
		}
	}
	if operationID != "" {
		return nil, fmt.Errorf("builder: operation %q with a JSON request body not found", operationID)
	}
	return nil, errors.New("builder: no operation with a JSON request body")
}

func order(ref *openapi3.SchemaRef) (float64, bool) {
	if ref == nil || ref.Value == nil {
		return 0, false
	}
	switch v := ref.Value.Extensions[extOrder].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	default:
		return 0, false
	}
}

func instanceFromSchema(name string, schema *openapi3.Schema, required bool) (fields.Instance, bool) {
	t, ok := typeFromSchema(schema)
	if !ok {
		return fields.Instance{}, false
	}
	tmpl := fields.Template{
		Name:     name,
		Label:    schema.Title,
		Type:     t,
		Required: required,
		Min:      schema.Min,
		Max:      schema.Max,
		Default:  fields.FromAny(schema.Default),
	}
	if tmpl.Label == "" {
		tmpl.Label = DefaultLabeler(name)
	}
	if schema.MaxLength != nil {
		tmpl.MaxLength = fields.Int(int(*schema.MaxLength))
	}
	enum := schema.Enum
	if t == fields.TypeCheckboxMulti && schema.Items != nil && schema.Items.Value != nil {
		enum = schema.Items.Value.Enum
	}
	for _, v := range enum {
		value := fmt.Sprint(v)
		tmpl.Options = append(tmpl.Options, fields.Option{Value: value, Label: DefaultLabeler(value)})
	}
	inst := tmpl.Instance()
	inst.Description = schema.Description
	return inst, true
}

func typeFromSchema(schema *openapi3.Schema) (fields.FieldType, bool) {
	if raw, ok := schema.Extensions[extFieldType].(string); ok {
		if t := fields.FieldType(raw); t.Valid() {
			return t, true
		}
	}
	switch {
	case schema.Type == nil:
		return fields.TypeText, true
	case schema.Type.Is(openapi3.TypeBoolean):
		return fields.TypeCheckboxBool, true
	case schema.Type.Is(openapi3.TypeNumber), schema.Type.Is(openapi3.TypeInteger):
		return fields.TypeNumber, true
	case schema.Type.Is(openapi3.TypeArray):
		return fields.TypeCheckboxMulti, true
	case schema.Type.Is(openapi3.TypeObject):
		return "", false
	}
	if len(schema.Enum) > 0 {
		return fields.TypeSelect, true
	}
	switch schema.Format {
	case "date":
		return fields.TypeDate, true
	case "email":
		return fields.TypeEmail, true
	case "uri", "url":
		return fields.TypeURL, true
	}
	if schema.MaxLength != nil && *schema.MaxLength > 255 {
		return fields.TypeTextarea, true
	}
	return fields.TypeText, true
}
