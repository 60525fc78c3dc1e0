package html_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-pawhealth/pkg/branding"
	"github.com/goliatone/go-pawhealth/pkg/fields"
	"github.com/goliatone/go-pawhealth/pkg/render"
	"github.com/goliatone/go-pawhealth/pkg/renderers/html"
)

func onboarding(t *testing.T) render.Form {
	t.Helper()
	var list fields.List
	for _, tmpl := range fields.Required() {
		list = append(list, tmpl.Instance())
	}
	form := render.NewForm("Tell us about your dog", list)
	form.ID = "onboarding"
	form.Action = "/preview/validate"
	return form
}

func renderForm(t *testing.T, form render.Form, opts render.RenderOptions) string {
	t.Helper()
	r, err := html.New(html.WithStylesheets("/styles.css"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), form, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, page string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(page, fragment) {
			t.Errorf("page missing %q", fragment)
		}
	}
}

func TestRender_OnboardingControls(t *testing.T) {
	form := onboarding(t)
	idx := form.Fields.Index(fields.NameSymptoms)
	form.Fields[idx].Value = fields.Strings("lethargy")

	page := renderForm(t, form, render.RenderOptions{})

	assertContains(t, page,
		`<title>Tell us about your dog</title>`,
		`<link rel="stylesheet" href="/styles.css">`,
		`<form id="onboarding" class="pawhealth-form" method="post" action="/preview/validate" novalidate>`,
		`id="onboarding-name" name="name"`,
		`<textarea id="onboarding-behaviorNotes" name="behaviorNotes"`,
		`<select id="onboarding-stoolType" name="stoolType" required>`,
		`type="checkbox" name="symptoms" value="lethargy" checked>`,
		`<button type="submit"`,
	)
	if strings.Contains(page, "field-invalid") {
		t.Fatalf("no errors were supplied, page marks a field invalid")
	}
}

func TestRender_ErrorsHiddenAndMethodOverride(t *testing.T) {
	form := onboarding(t)
	form.Method = "put"

	page := renderForm(t, form, render.RenderOptions{
		Errors:     map[string][]string{"name": {"is required"}},
		FormErrors: []string{"Dog limit reached", " Dog limit reached "},
		Hidden:     []render.HiddenField{render.DogID("dog-7")},
	})

	assertContains(t, page,
		`method="post"`,
		`<input type="hidden" name="_method" value="PUT">`,
		`<input type="hidden" name="dog_id" value="dog-7">`,
		`<div class="field field-text field-invalid" data-field="name">`,
		`<p class="field-error" role="alert">is required</p>`,
	)
	if strings.Count(page, "<li>Dog limit reached</li>") != 1 {
		t.Fatalf("expected one deduplicated form error\n%s", page)
	}
}

func TestRender_SanitisesServerMarkup(t *testing.T) {
	form := onboarding(t)
	form.Fields[0].Description = `<b>Call name</b><script>alert(1)</script>`
	form.Fields[0].AIText = `<a href="javascript:alert(1)">tip</a>`

	page := renderForm(t, form, render.RenderOptions{})

	assertContains(t, page, `<b>Call name</b>`)
	if strings.Contains(page, "<script>") || strings.Contains(page, "javascript:") {
		t.Fatalf("unsanitised markup rendered\n%s", page)
	}
}

func TestRender_ThemeVariables(t *testing.T) {
	settings := branding.FromMap(map[string]string{"bg_offwhite": "#fafafa"})
	page := renderForm(t, onboarding(t), render.RenderOptions{Theme: settings.RendererConfig()})

	assertContains(t, page,
		`<style data-theme="pawhealth-brand">`,
		`--brand-bg-offwhite: #fafafa;`,
	)
}

func TestRender_HonoursCancelledContext(t *testing.T) {
	r, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, onboarding(t), render.RenderOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}
