package protocol_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pawhealth/pkg/protocol"
)

func TestNormalize_RoundTripScenario(t *testing.T) {
	doc, err := protocol.Normalize([]byte(`{
		"daily_meal_plan": [{"title": "Breakfast"}],
		"extra_tips": [{"title": "Walk daily"}]
	}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	wantMeal := []protocol.Item{{ID: "meal-1", Title: "Breakfast"}}
	if diff := cmp.Diff(wantMeal, doc.MealPlan); diff != "" {
		t.Fatalf("daily_meal_plan mismatch (-want +got):\n%s", diff)
	}
	wantCustom := []protocol.Section{{
		ID:    "custom-extra_tips",
		Name:  "Extra Tips",
		Items: []protocol.Item{{ID: "custom-extra_tips-1", Title: "Walk daily"}},
	}}
	if diff := cmp.Diff(wantCustom, doc.CustomSections); diff != "" {
		t.Fatalf("custom_sections mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(protocol.DefaultItems(protocol.KeySupplements), doc.Supplements); diff != "" {
		t.Fatalf("missing section not defaulted (-want +got):\n%s", diff)
	}
}

func TestNormalize_ShapesAndOrder(t *testing.T) {
	doc, err := protocol.Normalize([]byte(`{
		"zeta": {"id": "z", "section_name": "Zeta notes", "items": [{"id": 7, "title": "Seven"}]},
		"custom_sections": [{"section_name": "First", "items": ["Plain title"]}],
		"alpha": [{"title": "A"}],
		"ignored": "just text",
		"next_steps": null,
		"supplements": []
	}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	var ids []string
	for _, s := range doc.CustomSections {
		ids = append(ids, s.ID)
	}
	if diff := cmp.Diff([]string{"custom-1", "z", "custom-alpha"}, ids); diff != "" {
		t.Fatalf("custom order mismatch (-want +got):\n%s", diff)
	}
	if got := doc.CustomSections[0].Items[0]; got.Title != "Plain title" || got.ID != "custom-1-1" {
		t.Fatalf("string item not coerced: %+v", got)
	}
	if got := doc.CustomSections[1]; got.Name != "Zeta notes" || got.Items[0].ID != "7" {
		t.Fatalf("explicit id/name not kept: %+v", got)
	}
	if len(doc.Supplements) != 0 {
		t.Fatalf("explicit empty section replaced with defaults: %+v", doc.Supplements)
	}
	if len(doc.NextSteps) != 4 {
		t.Fatalf("null section should default, got %+v", doc.NextSteps)
	}
}

func TestNormalize_RepeatedKeyKeepsFirst(t *testing.T) {
	doc, err := protocol.Normalize([]byte(`{
		"extra_tips": [{"title": "First"}],
		"supplements": [{"title": "Fish oil"}],
		"extra_tips": [{"title": "Second"}],
		"supplements": [{"title": "Probiotic"}]
	}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if len(doc.CustomSections) != 1 {
		t.Fatalf("want one custom section, got %+v", doc.CustomSections)
	}
	section := doc.CustomSections[0]
	if section.ID != "custom-extra_tips" || len(section.Items) != 1 || section.Items[0].Title != "First" {
		t.Fatalf("repeated key not folded once: %+v", section)
	}
	if len(doc.Supplements) != 1 || doc.Supplements[0].Title != "Fish oil" {
		t.Fatalf("protected key should keep first value, got %+v", doc.Supplements)
	}
}

func TestNormalize_RejectsNonObject(t *testing.T) {
	if _, err := protocol.Normalize([]byte(`[1,2]`)); !errors.Is(err, protocol.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	doc, err := protocol.Normalize(nil)
	if err != nil {
		t.Fatalf("empty input: %v", err)
	}
	if len(doc.MealPlan) != 4 || doc.CustomSections != nil {
		t.Fatalf("empty input should yield defaults only: %+v", doc)
	}
}

func TestSave_DropsBlankItemsAndEmptyCustomSections(t *testing.T) {
	doc, err := protocol.Normalize([]byte(`{
		"daily_meal_plan": [{"title": "  ", "description": ""}],
		"supplements": [{"title": "Probiotic"}, {"title": "", "description": " "}],
		"lifestyle_recommendations": [],
		"next_steps": [],
		"extra": [{"title": ""}]
	}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	saved := protocol.NewEditor(doc).Save()

	if saved.MealPlan == nil || len(saved.MealPlan) != 0 {
		t.Fatalf("protected section must persist empty, got %#v", saved.MealPlan)
	}
	if len(saved.Supplements) != 1 {
		t.Fatalf("supplements = %+v", saved.Supplements)
	}
	if saved.CustomSections != nil {
		t.Fatalf("custom sections should be pruned: %+v", saved.CustomSections)
	}

	raw, err := json.Marshal(saved)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var wire map[string]any
	_ = json.Unmarshal(raw, &wire)
	if _, ok := wire["custom_sections"]; ok {
		t.Fatalf("custom_sections must be omitted: %s", raw)
	}
	if _, ok := wire["daily_meal_plan"].([]any); !ok {
		t.Fatalf("daily_meal_plan must be an array: %s", raw)
	}
}

func TestEditor_Operations(t *testing.T) {
	doc, _ := protocol.Normalize([]byte(`{}`))
	ed := protocol.NewEditor(doc)
	meal := protocol.Protected{Key: protocol.KeyMealPlan}

	item, err := ed.AddItem(meal)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if item.ID != "meal-5" {
		t.Fatalf("item id = %q, want meal-5", item.ID)
	}
	if err := ed.UpdateItem(meal, item.ID, protocol.AttrTitle, "Snack"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := ed.UpdateItem(meal, item.ID, "colour", "x"); !errors.Is(err, protocol.ErrUnknownAttribute) {
		t.Fatalf("expected ErrUnknownAttribute, got %v", err)
	}
	if err := ed.MoveItem(meal, 4, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	cur := ed.Document()
	got, _ := cur.Protected(protocol.KeyMealPlan)
	if got[0].Title != "Snack" {
		t.Fatalf("move did not reorder: %+v", got)
	}
	for _, it := range got {
		if err := ed.RemoveItem(meal, it.ID); err != nil {
			t.Fatalf("remove %s: %v", it.ID, err)
		}
	}
	cur = ed.Document()
	if got, _ := cur.Protected(protocol.KeyMealPlan); len(got) != 0 {
		t.Fatalf("expected empty meal plan, got %+v", got)
	}

	first := ed.AddCustomSection()
	second := ed.AddCustomSection()
	if first.ID == second.ID {
		t.Fatalf("duplicate section ids %q", first.ID)
	}
	ref := protocol.Custom{ID: second.ID}
	added, err := ed.AddItem(ref)
	if err != nil {
		t.Fatalf("add custom item: %v", err)
	}
	if added.ID != second.ID+"-1" {
		t.Fatalf("custom item id = %q", added.ID)
	}
	_ = ed.UpdateItem(ref, added.ID, protocol.AttrDescription, "Brush teeth")
	if err := ed.RenameCustomSection(second.ID, "Dental"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := ed.MoveCustomSection(1, 0); err != nil {
		t.Fatalf("move section: %v", err)
	}
	if err := ed.RemoveCustomSection(first.ID); err != nil {
		t.Fatalf("remove section: %v", err)
	}
	if err := ed.RemoveCustomSection(first.ID); !errors.Is(err, protocol.ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
	if _, err := ed.AddItem(protocol.Protected{Key: "dessert"}); !errors.Is(err, protocol.ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection for bad key, got %v", err)
	}

	saved := ed.Save()
	want := []protocol.Section{{
		ID:    second.ID,
		Name:  "Dental",
		Items: []protocol.Item{{ID: added.ID, Description: "Brush teeth"}},
	}}
	if diff := cmp.Diff(want, saved.CustomSections); diff != "" {
		t.Fatalf("saved custom sections mismatch (-want +got):\n%s", diff)
	}
}

type stubWriter struct {
	err  error
	got  any
	dogs []string
}

func (w *stubWriter) UpdateProtocol(_ context.Context, dogID string, doc any) error {
	w.dogs = append(w.dogs, dogID)
	w.got = doc
	return w.err
}

func TestEditor_Persist(t *testing.T) {
	doc, _ := protocol.Normalize([]byte(`{"daily_meal_plan": [{"title": "Breakfast"}, {"title": ""}]}`))
	ed := protocol.NewEditor(doc)

	w := &stubWriter{}
	saved, err := ed.Persist(context.Background(), w, "dog-1")
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if len(saved.MealPlan) != 1 || w.got.(protocol.Document).MealPlan[0].Title != "Breakfast" {
		t.Fatalf("unexpected persisted document: %+v", w.got)
	}

	failing := &stubWriter{err: errors.New("server said no")}
	if _, err := ed.Persist(context.Background(), failing, "dog-1"); err == nil {
		t.Fatalf("expected error")
	}
	cur := ed.Document()
	if got, _ := cur.Protected(protocol.KeyMealPlan); len(got) != 2 {
		t.Fatalf("working document must be kept after failure, got %+v", got)
	}
}
