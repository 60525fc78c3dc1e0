package intake

import (
	"strings"

	"github.com/goliatone/go-pawhealth/pkg/client"
	"github.com/goliatone/go-pawhealth/pkg/fields"
)

const unknown = "Unknown"

// Names of optional onboarding fields promoted to top level dog attributes.
const (
	fieldSex = "sex"
	fieldDOB = "dob"
)

// CreatePayload builds the dog create body. Missing required strings fall back
// to "Unknown", numbers to 0 and symptoms to an empty list. The whole field
// list is embedded verbatim as form_data.fullFormFields.
func (f *Form) CreatePayload() client.DogInput {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return buildPayload(f.fields, true)
}

// UpdatePayload builds the dog update body. It matches CreatePayload except
// that blank name and breed are omitted so the stored values are kept.
func (f *Form) UpdatePayload() client.DogInput {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return buildPayload(f.fields, false)
}

func buildPayload(list fields.List, fallbacks bool) client.DogInput {
	str := func(name string) string {
		field, ok := list.Lookup(name)
		if !ok {
			return ""
		}
		return strings.TrimSpace(field.Value.Str())
	}
	required := func(name string) string {
		if v := str(name); v != "" || !fallbacks {
			return v
		}
		return unknown
	}
	num := func(name string) float64 {
		field, ok := list.Lookup(name)
		if !ok {
			return 0
		}
		n, _ := field.Value.Float()
		return n
	}
	symptoms := []string{}
	if field, ok := list.Lookup(fields.NameSymptoms); ok && field.Value.Kind() == fields.KindList {
		symptoms = field.Value.Items()
	}

	stool := str(fields.NameStoolType)
	if stool == "" {
		stool = unknown
	}
	notes := str(fields.NameBehaviorNotes)
	age := num(fields.NameAge)
	weight := num(fields.NameWeight)

	full := list.Clone()
	if full == nil {
		full = fields.List{}
	}

	return client.DogInput{
		Name:        required(fields.NameName),
		Breed:       required(fields.NameBreed),
		Sex:         str(fieldSex),
		DateOfBirth: str(fieldDOB),
		Age:         age,
		WeightKg:    weight,
		Notes:       notes,
		StoolType:   stool,
		Symptoms:    symptoms,
		FormData: client.FormData{
			Age:            age,
			Weight:         weight,
			StoolType:      stool,
			Symptoms:       symptoms,
			BehaviorNotes:  notes,
			FullFormFields: full,
		},
	}
}
