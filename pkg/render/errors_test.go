package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-pawhealth/pkg/client"
	"github.com/goliatone/go-pawhealth/pkg/fields"
	"github.com/goliatone/go-pawhealth/pkg/intake"
	"github.com/goliatone/go-pawhealth/pkg/render"
)

func intakeForm() render.Form {
	var list fields.List
	for _, tmpl := range fields.Required() {
		list = append(list, tmpl.Instance())
	}
	return render.NewForm("Onboarding", list)
}

func TestMapErrorPayload_ServerLocations(t *testing.T) {
	payload := map[string][]string{}
	payload["body.name"] = []string{"Name is required"}
	payload["/body/weight_kg"] = []string{"Weight must be positive"}
	payload["$.body.form_data.symptoms[0]"] = []string{"Unknown symptom"}
	payload["body.notes"] = []string{" Too long ", "Too long"}
	payload["non_field_errors"] = []string{"Form level error"}
	payload["body/microchip"] = []string{"Should fall back to form errors"}
	payload["body.form_data.fullFormFields.3.value"] = []string{"Bad entry"}
	payload[""] = []string{"Unscoped form error"}

	mapped := render.MapErrorPayload(intakeForm(), payload)

	wantFields := map[string][]string{
		"name":          {"Name is required"},
		"weight":        {"Weight must be positive"},
		"symptoms":      {"Unknown symptom"},
		"behaviorNotes": {"Too long"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Bad entry", "Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapError(t *testing.T) {
	form := intakeForm()

	invalid := &intake.ValidationError{Issues: []intake.Issue{{Field: "age", Message: "is required"}}}
	if diff := cmp.Diff(map[string][]string{"age": {"is required"}}, render.MapError(form, invalid).Fields); diff != "" {
		t.Fatalf("validation mapping (-want +got):\n%s", diff)
	}

	apiErr := &client.APIError{Status: 422, Message: "invalid", Fields: map[string][]string{"body.breed": {"required"}}}
	if diff := cmp.Diff(map[string][]string{"breed": {"required"}}, render.MapError(form, apiErr).Fields); diff != "" {
		t.Fatalf("api mapping (-want +got):\n%s", diff)
	}

	business := &client.APIError{Status: 400, Message: "Dog limit reached"}
	if diff := cmp.Diff([]string{"Dog limit reached"}, render.MapError(form, business).Form); diff != "" {
		t.Fatalf("business mapping (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
