package builder_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pawhealth/pkg/builder"
	"github.com/goliatone/go-pawhealth/pkg/fields"
)

var fixedNow = time.Date(2025, 9, 14, 10, 30, 0, 0, time.UTC)

func sequentialIDs() func(time.Time) string {
	n := 0
	return func(time.Time) string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newBuilder(options ...builder.Option) *builder.Builder {
	base := []builder.Option{
		builder.WithClock(func() time.Time { return fixedNow }),
		builder.WithIDGenerator(sequentialIDs()),
	}
	return builder.New(append(base, options...)...)
}

func names(list []builder.Field) []string {
	out := make([]string, len(list))
	for i, f := range list {
		out[i] = f.Name
	}
	return out
}

func TestDropNewField_Defaults(t *testing.T) {
	b := newBuilder()
	cases := []struct {
		typ   fields.FieldType
		value fields.Value
		opts  int
	}{
		{fields.TypeCheckboxBool, fields.Bool(false), 0},
		{fields.TypeNumber, fields.Number(0), 0},
		{fields.TypeRange, fields.String(""), 0},
		{fields.TypeDate, fields.String("2025-09-14"), 0},
		{fields.TypeText, fields.String(""), 0},
		{fields.TypeSelect, fields.String(""), 1},
		{fields.TypeCheckboxMulti, fields.Strings(), 1},
	}
	for _, tc := range cases {
		field, err := b.DropNewField(tc.typ, 99)
		if err != nil {
			t.Fatalf("drop %s: %v", tc.typ, err)
		}
		if !tc.value.Equal(field.Value) {
			t.Errorf("%s default = %#v, want %#v", tc.typ, field.Value, tc.value)
		}
		if len(field.Options) != tc.opts {
			t.Errorf("%s options = %v", tc.typ, field.Options)
		}
	}
	if _, err := b.DropNewField("signature", 0); !errors.Is(err, builder.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestDropNewField_NamesAndPlacement(t *testing.T) {
	b := newBuilder()
	_, _ = b.DropNewField(fields.TypeEmail, 0)
	_, _ = b.DropNewField(fields.TypeEmail, 0)
	_, _ = b.DropNewField(fields.TypeCheckboxMulti, 1)

	want := []string{"email_2", "checkbox_multi_1", "email_1"}
	if diff := cmp.Diff(want, names(b.Fields())); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestNewFieldID_Format(t *testing.T) {
	id := builder.NewFieldID(fixedNow)
	pattern := regexp.MustCompile(fmt.Sprintf(`^field_%d_[0-9a-z]{9}$`, fixedNow.UnixMilli()))
	if !pattern.MatchString(id) {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestDuplicateField_Scenario(t *testing.T) {
	b := newBuilder()
	_, _ = b.DropNewField(fields.TypeText, 0)
	email, _ := b.DropNewField(fields.TypeEmail, 1)
	_, _ = b.DropNewField(fields.TypeNumber, 2)

	if email.Name != "email_1" {
		t.Fatalf("setup name = %q", email.Name)
	}
	dup, err := b.DuplicateField(email.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.ID == email.ID {
		t.Fatalf("duplicate kept id %q", dup.ID)
	}
	if dup.Name != "email_1_copy" || dup.Label != "Email (Copy)" {
		t.Fatalf("duplicate name/label = %q/%q", dup.Name, dup.Label)
	}
	list := b.Fields()
	if list[2].ID != dup.ID {
		t.Fatalf("duplicate not inserted after source: %v", names(list))
	}
	if _, err := b.DuplicateField("missing"); !errors.Is(err, builder.ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
}

func TestMoveField(t *testing.T) {
	cases := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"before later field", 0, 2, []string{"text_2", "text_1", "text_3"}},
		{"to trailing zone", 0, 3, []string{"text_2", "text_3", "text_1"}},
		{"before earlier field", 2, 0, []string{"text_3", "text_1", "text_2"}},
		{"onto itself", 1, 1, []string{"text_1", "text_2", "text_3"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBuilder()
			for i := range 3 {
				_, _ = b.DropNewField(fields.TypeText, i)
			}
			if err := b.MoveField(tc.from, tc.to); err != nil {
				t.Fatalf("move: %v", err)
			}
			if diff := cmp.Diff(tc.want, names(b.Fields())); diff != "" {
				t.Fatalf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}

	b := newBuilder()
	_, _ = b.DropNewField(fields.TypeText, 0)
	if err := b.MoveField(0, 5); !errors.Is(err, builder.ErrIndex) {
		t.Fatalf("expected ErrIndex, got %v", err)
	}
}

func TestUpdateAndDeleteField(t *testing.T) {
	b := newBuilder()
	first, _ := b.DropNewField(fields.TypeText, 0)
	second, _ := b.DropNewField(fields.TypeText, 1)

	second.Name = first.Name
	if err := b.UpdateField(second); !errors.Is(err, builder.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	second.Name = "favourite_toy"
	second.Type = fields.TypeCheckboxMulti
	second.Value = fields.String("ball")
	if err := b.UpdateField(second); err != nil {
		t.Fatalf("update: %v", err)
	}
	got := b.Fields()[1]
	if got.Name != "favourite_toy" || got.Value.Kind() != fields.KindList {
		t.Fatalf("update not applied with coercion: %+v", got)
	}

	if err := b.DeleteField(first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := b.DeleteField(first.ID); !errors.Is(err, builder.ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
	if len(b.Fields()) != 1 {
		t.Fatalf("expected one field left")
	}
}

func TestExportImportJSON(t *testing.T) {
	b := newBuilder()
	if err := b.ImportJSON(fields.DefaultOnboardingJSON()); err != nil {
		t.Fatalf("import default form: %v", err)
	}
	list := b.Fields()
	if len(list) != 22 || list[0].ID != "field_1757848467880_wn8vf6mpg" {
		t.Fatalf("unexpected import: %d fields, first id %q", len(list), list[0].ID)
	}

	raw, err := b.ExportJSON()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	again := newBuilder()
	if err := again.ImportJSON(raw); err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if diff := cmp.Diff(list, again.Fields()); diff != "" {
		t.Fatalf("json round trip mismatch (-want +got):\n%s", diff)
	}

	empty, _ := newBuilder().ExportJSON()
	if string(empty) != "[]" {
		t.Fatalf("empty export = %s", empty)
	}
}

type memoryStore struct {
	form  json.RawMessage
	saved any
	err   error
}

func (s *memoryStore) OnboardingFormJSON(context.Context) (json.RawMessage, error) {
	return s.form, s.err
}

func (s *memoryStore) UpdateOnboardingForm(_ context.Context, form any) error {
	if s.err != nil {
		return s.err
	}
	s.saved = form
	return nil
}

func TestLoadSave(t *testing.T) {
	store := &memoryStore{form: json.RawMessage(`[{"id":"a","name":"nickname","type":"text"}]`)}
	b := newBuilder(builder.WithStore(store))
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	_, _ = b.DropNewField(fields.TypeTel, 1)
	if err := b.Save(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	saved, ok := store.saved.([]builder.Field)
	if !ok {
		t.Fatalf("saved %T, want []builder.Field", store.saved)
	}
	if diff := cmp.Diff([]string{"nickname", "tel_1"}, names(saved)); diff != "" {
		t.Fatalf("saved names mismatch (-want +got):\n%s", diff)
	}

	store.err = errors.New("offline")
	if err := b.Save(context.Background()); err == nil {
		t.Fatalf("expected save error")
	}
	if err := builder.New().Save(context.Background()); err == nil {
		t.Fatalf("expected error without store")
	}
}

func TestExportOpenAPI(t *testing.T) {
	b := newBuilder()
	toy, _ := b.DropNewField(fields.TypeRadio, 0)
	toy.Name = "toy"
	toy.Required = true
	toy.Options = []fields.Option{{Value: "ball", Label: "Ball"}, {Value: "rope", Label: "Rope"}}
	if err := b.UpdateField(toy); err != nil {
		t.Fatalf("update: %v", err)
	}

	raw, err := b.ExportOpenAPI()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	doc, err := openapi3.NewLoader().LoadFromData(raw)
	if err != nil {
		t.Fatalf("load exported document: %v", err)
	}
	item := doc.Paths.Value(builder.SubmitPath)
	if item == nil || item.Post == nil || item.Post.OperationID != builder.SubmitOperationID {
		t.Fatalf("submit operation missing")
	}
	schema := item.Post.RequestBody.Value.Content.Get("application/json").Schema.Value
	prop := schema.Properties["toy"]
	if prop == nil || len(prop.Value.Enum) != 2 {
		t.Fatalf("toy property not exported: %+v", prop)
	}

	imported := newBuilder()
	added, err := imported.ImportOpenAPI(context.Background(), raw, builder.SubmitOperationID)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	want := append(fields.RequiredNames(), "toy")
	if diff := cmp.Diff(want, names(added)); diff != "" {
		t.Fatalf("imported order mismatch (-want +got):\n%s", diff)
	}
	last := added[len(added)-1]
	if last.Type != fields.TypeRadio || !last.Required || len(last.Options) != 2 {
		t.Fatalf("imported toy field = %+v", last.Instance)
	}
}

func TestPaletteCoversEveryType(t *testing.T) {
	var got []fields.FieldType
	for _, entry := range builder.Palette() {
		got = append(got, entry.Type)
	}
	if diff := cmp.Diff(fields.Types(), got); diff != "" {
		t.Fatalf("palette mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"stoolType":      "Stool Type",
		"joining_reason": "Joining Reason",
		"email_1":        "Email 1",
		"vetVisit2":      "Vet Visit 2",
	}
	for in, want := range cases {
		if got := builder.DefaultLabeler(in); got != want {
			t.Errorf("DefaultLabeler(%q) = %q, want %q", in, got, want)
		}
	}
}
