package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-pawhealth/pkg/fields"
)

// PayloadSchema describes the dog create body produced by CreatePayload.
func PayloadSchema() *openapi3.Schema {
	symptoms := openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())

	fieldItem := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("type", openapi3.NewStringSchema().WithEnum(typeEnum()...)).
		WithProperty("label", openapi3.NewStringSchema()).
		WithProperty("required", openapi3.NewBoolSchema())
	fieldItem.Required = []string{"name", "type"}

	formData := openapi3.NewObjectSchema().
		WithProperty("age", openapi3.NewFloat64Schema().WithMin(0)).
		WithProperty("weight", openapi3.NewFloat64Schema().WithMin(0)).
		WithProperty("stoolType", openapi3.NewStringSchema()).
		WithProperty("symptoms", symptoms).
		WithProperty("behaviorNotes", openapi3.NewStringSchema()).
		WithProperty("fullFormFields", openapi3.NewArraySchema().WithItems(fieldItem))
	formData.Required = []string{"symptoms", "fullFormFields"}

	root := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(80)).
		WithProperty("breed", openapi3.NewStringSchema().WithMaxLength(80)).
		WithProperty("sex", openapi3.NewStringSchema()).
		WithProperty("date_of_birth", openapi3.NewStringSchema().WithFormat("date")).
		WithProperty("age", openapi3.NewFloat64Schema().WithMin(0)).
		WithProperty("weight_kg", openapi3.NewFloat64Schema().WithMin(0)).
		WithProperty("notes", openapi3.NewStringSchema()).
		WithProperty("stoolType", openapi3.NewStringSchema()).
		WithProperty("symptoms", symptoms).
		WithProperty("form_data", formData)
	root.Required = []string{"name", "weight_kg", "form_data"}
	root.Title = "DogCreate"
	return root
}

// FieldSchema describes the value of a single field.
func FieldSchema(field fields.Instance) *openapi3.Schema {
	var schema *openapi3.Schema
	switch field.Type {
	case fields.TypeNumber, fields.TypeRange:
		schema = openapi3.NewFloat64Schema()
		if field.Min != nil {
			schema = schema.WithMin(*field.Min)
		}
		if field.Max != nil {
			schema = schema.WithMax(*field.Max)
		}
	case fields.TypeCheckboxBool:
		schema = openapi3.NewBoolSchema()
	case fields.TypeCheckboxMulti:
		items := openapi3.NewStringSchema()
		if len(field.Options) > 0 {
			items = items.WithEnum(optionValues(field.Options)...)
		}
		schema = openapi3.NewArraySchema().WithItems(items)
	default:
		schema = openapi3.NewStringSchema()
		switch field.Type {
		case fields.TypeDate:
			schema = schema.WithFormat("date")
		case fields.TypeEmail:
			schema = schema.WithFormat("email")
		case fields.TypeURL:
			schema = schema.WithFormat("uri")
		case fields.TypeSelect, fields.TypeRadio:
			if len(field.Options) > 0 {
				schema = schema.WithEnum(optionValues(field.Options)...)
			}
		}
		if field.MaxLength != nil {
			schema = schema.WithMaxLength(int64(*field.MaxLength))
		}
	}
	schema.Title = field.Label
	schema.Description = field.Description
	return schema
}

// FormSchema describes an object holding one property per field.
func FormSchema(list fields.List) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	var required []string
	for _, field := range list {
		schema = schema.WithProperty(field.Name, FieldSchema(field))
		if field.Required {
			required = append(required, field.Name)
		}
	}
	schema.Required = required
	return schema
}

// ValidatePayload checks payload against PayloadSchema. payload may be any
// JSON encodable value, including raw JSON bytes.
func ValidatePayload(payload any) ([]Issue, error) {
	doc, err := toJSONTree(payload)
	if err != nil {
		return nil, err
	}
	return visit(PayloadSchema(), doc), nil
}

func visit(schema *openapi3.Schema, doc any) []Issue {
	err := schema.VisitJSON(doc, openapi3.MultiErrors())
	if err == nil {
		return nil
	}
	var issues []Issue
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, item := range multi {
			issues = append(issues, schemaIssue(item))
		}
		return issues
	}
	return []Issue{schemaIssue(err)}
}

func schemaIssue(err error) Issue {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return Issue{
			Field:   strings.Join(schemaErr.JSONPointer(), "."),
			Message: schemaErr.Reason,
		}
	}
	return Issue{Message: err.Error()}
}

func toJSONTree(payload any) (any, error) {
	var raw []byte
	switch typed := payload.(type) {
	case []byte:
		raw = typed
	case json.RawMessage:
		raw = typed
	default:
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("intake: encode payload: %w", err)
		}
		raw = encoded
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("intake: decode payload: %w", err)
	}
	return doc, nil
}

func optionValues(options []fields.Option) []any {
	out := make([]any, len(options))
	for i, opt := range options {
		out[i] = opt.Value
	}
	return out
}

func typeEnum() []any {
	types := fields.Types()
	out := make([]any, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
