package render

import (
	"context"
	"strings"

	"github.com/goliatone/go-pawhealth/pkg/fields"
)

// Renderer turns a Form into bytes (HTML, a terminal transcript, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form Form, options RenderOptions) ([]byte, error)
}

// Form is the renderable view of a field list.
type Form struct {
	ID          string
	Title       string
	Description string
	Action      string
	Method      string
	SubmitLabel string
	Fields      fields.List
}

// NewForm wraps list with a title.
func NewForm(title string, list fields.List) Form {
	return Form{Title: title, Method: "POST", SubmitLabel: "Save", Fields: list}
}

// HTTPMethod returns the upper-cased method, POST when unset.
func (f Form) HTTPMethod() string {
	if m := strings.ToUpper(strings.TrimSpace(f.Method)); m != "" {
		return m
	}
	return "POST"
}
