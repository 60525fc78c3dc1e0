package intake

import (
	"context"
	"fmt"

	"github.com/goliatone/go-pawhealth/pkg/client"
	"github.com/goliatone/go-pawhealth/pkg/fields"
	"github.com/goliatone/go-pawhealth/pkg/merge"
)

// Source provides the onboarding form and dog records.
type Source interface {
	OnboardingForm(ctx context.Context) ([]fields.Declaration, error)
	GetDog(ctx context.Context, id string) (client.Dog, error)
}

// Session is a loaded intake form plus the record it edits.
type Session struct {
	Form *Form
	// Dog is the record being edited; zero for a new dog.
	Dog client.Dog
}

// Load fetches the onboarding form and merges it with the required fields.
// When dogID is set, the dog record is fetched only after the form resolves
// and its saved field list seeds the form values.
func Load(ctx context.Context, src Source, dogID string, options ...Option) (Session, error) {
	decls, err := src.OnboardingForm(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("intake: load onboarding form: %w", err)
	}
	if len(decls) == 0 {
		if decls, err = fields.DefaultOnboarding(); err != nil {
			return Session{}, err
		}
	}

	if dogID == "" {
		return Session{Form: New(merge.Merge(decls, nil), options...)}, nil
	}

	dog, err := src.GetDog(ctx, dogID)
	if err != nil {
		return Session{}, fmt.Errorf("intake: load dog %s: %w", dogID, err)
	}
	saved, err := dog.FullFormFields()
	if err != nil {
		return Session{}, err
	}

	form := New(merge.Merge(decls, saved), options...)
	form.Hydrate(saved)
	hydrateTopLevel(form, dog)
	return Session{Form: form, Dog: dog}, nil
}

// hydrateTopLevel fills required values still blank from the record's top
// level attributes, for dogs created before field lists were saved.
func hydrateTopLevel(form *Form, dog client.Dog) {
	set := func(name string, value fields.Value) {
		if field, ok := form.Field(name); ok && field.Value.IsEmpty() && !value.IsEmpty() {
			_ = form.SetValue(name, value)
		}
	}
	set(fields.NameName, fields.String(dog.Name))
	set(fields.NameBreed, fields.String(dog.Breed))
	if dog.WeightKg > 0 {
		set(fields.NameWeight, fields.Number(dog.WeightKg))
	}
	set(fields.NameBehaviorNotes, fields.String(dog.Notes))
}
