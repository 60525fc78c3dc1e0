package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-pawhealth/pkg/fields"
	"github.com/goliatone/go-pawhealth/pkg/intake"
	"github.com/goliatone/go-pawhealth/pkg/render"
)

const noneOption = "(none)"

// Renderer walks a form in the terminal, one prompt per field. Answers are
// validated against the field constraints and re-asked until they pass.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{outputFormat: OutputFormatJSON}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain"
	}
	return "application/json"
}

// Render prompts for every field of form and returns the collected values.
func (r *Renderer) Render(ctx context.Context, form render.Form, opts render.RenderOptions) ([]byte, error) {
	f := intake.New(form.Fields)
	for _, message := range opts.FormErrors {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return nil, err
		}
	}
	if err := r.Fill(ctx, f, opts.Errors); err != nil {
		return nil, err
	}
	return r.serialize(f.Fields())
}

// Fill prompts for each field of f in order and applies the answers with
// UpdateValue. errs are server messages shown before the matching prompt.
func (r *Renderer) Fill(ctx context.Context, f *intake.Form, errs map[string][]string) error {
	if f == nil {
		return ErrNoForm
	}
	for i, field := range f.Fields() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, message := range errs[field.Name] {
			if err := r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, label(field), message)); err != nil {
				return err
			}
		}
		value, err := r.ask(ctx, field)
		if err != nil {
			return err
		}
		if err := f.UpdateValue(i, value); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) ask(ctx context.Context, field fields.Instance) (fields.Value, error) {
	for {
		value, err := r.prompt(ctx, field)
		if err != nil {
			return fields.Value{}, err
		}
		candidate := field.Clone()
		candidate.Value = fields.Coerce(field.Type, value)
		msg := intake.FieldError(candidate)
		if msg == "" {
			return candidate.Value, nil
		}
		if err := r.driver.Info(ctx, fmt.Sprintf("%s%s %s", r.theme.ErrorPrefix, label(field), msg)); err != nil {
			return fields.Value{}, err
		}
	}
}

func (r *Renderer) prompt(ctx context.Context, field fields.Instance) (fields.Value, error) {
	message := label(field)
	help := help(field)

	switch field.Type {
	case fields.TypeCheckboxBool:
		ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: field.Value.Flag(), Help: help})
		return fields.Bool(ok), err

	case fields.TypeCheckboxMulti:
		labels, values := optionLists(field.Options)
		var defaults []int
		for _, item := range field.Value.Items() {
			if idx := slices.Index(values, item); idx >= 0 {
				defaults = append(defaults, idx)
			}
		}
		picked, err := r.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels, Defaults: defaults, Help: help})
		if err != nil {
			return fields.Value{}, err
		}
		selected := make([]string, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(values) {
				selected = append(selected, values[idx])
			}
		}
		return fields.Strings(selected...), nil

	case fields.TypeSelect, fields.TypeRadio:
		labels, values := optionLists(field.Options)
		if !field.Required {
			labels = append([]string{noneOption}, labels...)
			values = append([]string{""}, values...)
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      labels,
			DefaultIndex: slices.Index(values, field.Value.Str()),
			Help:         help,
		})
		if err != nil {
			return fields.Value{}, err
		}
		if idx < 0 || idx >= len(values) {
			return fields.String(""), nil
		}
		return fields.String(values[idx]), nil

	case fields.TypeTextarea:
		text, err := r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: field.Value.Str(), Help: help})
		return fields.String(text), err

	case fields.TypeNumber, fields.TypeRange:
		text, err := r.driver.Input(ctx, InputConfig{Message: message, Default: field.Value.Str(), Help: help})
		if err != nil {
			return fields.Value{}, err
		}
		text = strings.TrimSpace(text)
		if n, perr := strconv.ParseFloat(text, 64); perr == nil {
			return fields.Number(n), nil
		}
		return fields.String(text), nil

	default:
		text, err := r.driver.Input(ctx, InputConfig{Message: message, Default: field.Value.Str(), Help: help})
		return fields.String(strings.TrimSpace(text)), err
	}
}

func (r *Renderer) serialize(list fields.List) ([]byte, error) {
	if r.outputFormat == OutputFormatPrettyText {
		var buf bytes.Buffer
		for _, field := range list {
			fmt.Fprintf(&buf, "%s: %s\n", label(field), display(field))
		}
		return buf.Bytes(), nil
	}
	values := make(map[string]fields.Value, len(list))
	for _, field := range list {
		values[field.Name] = field.Value
	}
	return json.MarshalIndent(values, "", "  ")
}

func label(field fields.Instance) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func help(field fields.Instance) string {
	parts := make([]string, 0, 2)
	if field.Description != "" {
		parts = append(parts, field.Description)
	}
	if field.Placeholder != "" {
		parts = append(parts, field.Placeholder)
	}
	return strings.Join(parts, " | ")
}

func optionLists(options []fields.Option) (labels, values []string) {
	labels = make([]string, 0, len(options))
	values = make([]string, 0, len(options))
	for _, opt := range options {
		text := opt.Label
		if text == "" {
			text = opt.Value
		}
		labels = append(labels, text)
		values = append(values, opt.Value)
	}
	return labels, values
}

func display(field fields.Instance) string {
	switch field.Value.Kind() {
	case fields.KindList:
		return strings.Join(field.Value.Items(), ", ")
	case fields.KindBool:
		if field.Value.Flag() {
			return "yes"
		}
		return "no"
	default:
		return field.Value.Str()
	}
}
