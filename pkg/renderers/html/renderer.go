// Package html renders intake and builder forms as a standalone HTML page.
// Server supplied description and aiText markup is sanitised; brand colours
// arrive as CSS variables through the theme configuration.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-pawhealth/pkg/fields"
	"github.com/goliatone/go-pawhealth/pkg/intake"
	"github.com/goliatone/go-pawhealth/pkg/render"
	rendertemplate "github.com/goliatone/go-pawhealth/pkg/render/template"
	"github.com/goliatone/go-pawhealth/pkg/render/template/pongo"
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS  fs.FS
	engine      rendertemplate.Engine
	policy      *bluemonday.Policy
	stylesheets []string
}

// WithTemplatesFS supplies an alternate template bundle. It must contain
// templates/form.tmpl and templates/field.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templateFS = os.DirFS(path)
		}
	}
}

// WithEngine injects a template engine.
func WithEngine(engine rendertemplate.Engine) Option {
	return func(cfg *config) {
		if engine != nil {
			cfg.engine = engine
		}
	}
}

// WithPolicy overrides the sanitiser used for server supplied markup.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithStylesheets links extra stylesheets, such as the brand styles.css.
func WithStylesheets(hrefs ...string) Option {
	return func(cfg *config) {
		cfg.stylesheets = append(cfg.stylesheets, hrefs...)
	}
}

// Renderer implements render.Renderer.
type Renderer struct {
	templates   rendertemplate.Engine
	policy      *bluemonday.Policy
	stylesheets []string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.policy == nil {
		cfg.policy = bluemonday.UGCPolicy()
	}

	engine := cfg.engine
	if engine == nil {
		var err error
		engine, err = pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
			pongo.WithSetName("html"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure templates: %w", err)
		}
	}
	return &Renderer{templates: engine, policy: cfg.policy, stylesheets: cfg.stylesheets}, nil
}

func (r *Renderer) Name() string { return "html" }

func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

// Render produces the HTML page for form.
func (r *Renderer) Render(ctx context.Context, form render.Form, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	method := form.HTTPMethod()
	hidden := make(map[string]string)
	for _, h := range opts.Hidden {
		hidden[h.Name] = h.Value
	}
	if method != "GET" && method != "POST" {
		hidden["_method"] = method
		method = "POST"
	}

	views := make([]map[string]any, 0, len(form.Fields))
	for _, field := range form.Fields {
		views = append(views, r.fieldView(form.ID, field, opts.Errors[field.Name]))
	}

	id := form.ID
	if id == "" {
		id = "pawhealth-form"
	}
	data := map[string]any{
		"form": map[string]any{
			"id":           id,
			"title":        form.Title,
			"description":  form.Description,
			"method":       strings.ToLower(method),
			"action":       form.Action,
			"submit_label": submitLabel(form.SubmitLabel),
		},
		"fields":        views,
		"form_errors":   render.MergeFormErrors(opts.FormErrors),
		"hidden_fields": hiddenViews(render.SortedHiddenFields(hidden)),
		"stylesheets":   r.stylesheets,
		"theme":         themeView(opts),
	}

	out, err := r.templates.RenderTemplate("templates/form", data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(out), nil
}

func (r *Renderer) fieldView(formID string, field fields.Instance, errs []string) map[string]any {
	id := field.Name
	if formID != "" {
		id = formID + "-" + field.Name
	}
	selected := selectedValues(field)

	options := make([]map[string]any, 0, len(field.Options))
	for _, opt := range field.Options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		options = append(options, map[string]any{
			"value":   opt.Value,
			"label":   label,
			"checked": slices.Contains(selected, opt.Value),
		})
	}

	if len(errs) == 0 && field.ErrorText != "" && intake.IsFieldInError(field) {
		errs = []string{field.ErrorText}
	}

	view := map[string]any{
		"id":          id,
		"name":        field.Name,
		"label":       field.Label,
		"type":        string(field.Type),
		"control":     control(field.Type),
		"input_type":  inputType(field.Type),
		"required":    field.Required,
		"placeholder": field.Placeholder,
		"value":       field.Value.Str(),
		"checked":     field.Value.Flag(),
		"options":     options,
		"min":         formatBound(field.Min),
		"max":         formatBound(field.Max),
		"max_length":  "",
		"description": r.policy.Sanitize(field.Description),
		"ai_text":     r.policy.Sanitize(field.AIText),
		"errors":      render.MergeFormErrors(errs),
	}
	if field.MaxLength != nil {
		view["max_length"] = strconv.Itoa(*field.MaxLength)
	}
	return view
}

func selectedValues(field fields.Instance) []string {
	switch field.Value.Kind() {
	case fields.KindList:
		return field.Value.Items()
	case fields.KindString:
		if v := field.Value.Str(); v != "" {
			return []string{v}
		}
	}
	return nil
}

func control(t fields.FieldType) string {
	switch t {
	case fields.TypeTextarea:
		return "textarea"
	case fields.TypeSelect:
		return "select"
	case fields.TypeRadio, fields.TypeCheckboxMulti:
		return "choices"
	case fields.TypeCheckboxBool:
		return "checkbox"
	default:
		return "input"
	}
}

func inputType(t fields.FieldType) string {
	switch t {
	case fields.TypeNumber:
		return "number"
	case fields.TypeRange:
		return "range"
	case fields.TypeDate:
		return "date"
	case fields.TypeEmail:
		return "email"
	case fields.TypeTel:
		return "tel"
	case fields.TypeURL:
		return "url"
	case fields.TypeRadio:
		return "radio"
	case fields.TypeCheckboxMulti:
		return "checkbox"
	default:
		return "text"
	}
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func submitLabel(label string) string {
	if strings.TrimSpace(label) == "" {
		return "Save"
	}
	return label
}

func hiddenViews(hidden []render.HiddenField) []map[string]string {
	out := make([]map[string]string, 0, len(hidden))
	for _, h := range hidden {
		out = append(out, map[string]string{"name": h.Name, "value": h.Value})
	}
	return out
}

func themeView(opts render.RenderOptions) map[string]any {
	if opts.Theme == nil {
		return map[string]any{}
	}
	return map[string]any{
		"name":           opts.Theme.Theme,
		"variant":        opts.Theme.Variant,
		"css_vars_style": cssVarsStyle(opts.Theme.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString("  ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
