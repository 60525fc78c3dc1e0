package render_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pawhealth/pkg/render"
)

func TestMergeAndSortHiddenFields(t *testing.T) {
	base := map[string]string{
		" existing ": "keep",
		"":           "ignored",
	}

	merged := render.MergeHiddenFields(base,
		render.CSRFToken("_csrf", "token123"),
		render.DogID("dog-7"),
		render.Hidden("version", 4),
		render.Hidden("  ", "skip"),
	)

	wantMerged := map[string]string{
		"existing": "keep",
		"_csrf":    "token123",
		"dog_id":   "dog-7",
		"version":  "4",
	}
	if diff := cmp.Diff(wantMerged, merged); diff != "" {
		t.Fatalf("merged hidden fields mismatch (-want +got):\n%s", diff)
	}

	wantSorted := []render.HiddenField{
		{Name: "_csrf", Value: "token123"},
		{Name: "dog_id", Value: "dog-7"},
		{Name: "existing", Value: "keep"},
		{Name: "version", Value: "4"},
	}
	if diff := cmp.Diff(wantSorted, render.SortedHiddenFields(merged)); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}
}

type namedRenderer string

func (n namedRenderer) Name() string        { return string(n) }
func (n namedRenderer) ContentType() string { return "text/plain" }
func (n namedRenderer) Render(context.Context, render.Form, render.RenderOptions) ([]byte, error) {
	return []byte(n), nil
}

func TestRegistry(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(namedRenderer("html"))
	registry.MustRegister(namedRenderer("tui"))

	if err := registry.Register(namedRenderer("html")); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	def, err := registry.Get("")
	if err != nil || def.Name() != "html" {
		t.Fatalf("default renderer: %v %v", def, err)
	}
	if diff := cmp.Diff([]string{"html", "tui"}, registry.List()); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
	if _, err := registry.Get("pdf"); err == nil {
		t.Fatalf("expected missing renderer error")
	}
}
