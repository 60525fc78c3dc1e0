package fields

// Names of the always-required intake fields.
const (
	NameName          = "name"
	NameBreed         = "breed"
	NameAge           = "age"
	NameWeight        = "weight"
	NameStoolType     = "stoolType"
	NameSymptoms      = "symptoms"
	NameBehaviorNotes = "behaviorNotes"
)

// Required returns the always-present intake field templates in their fixed
// order. Each call returns fresh copies.
func Required() []Template {
	return []Template{
		{
			Name:        NameName,
			Label:       "Dog's name",
			Type:        TypeText,
			Required:    true,
			Placeholder: "e.g. Rex",
			MaxLength:   Int(80),
			Default:     String(""),
		},
		{
			Name:        NameBreed,
			Label:       "Breed",
			Type:        TypeText,
			Required:    true,
			Placeholder: "e.g. Beagle",
			MaxLength:   Int(80),
			Default:     String(""),
		},
		{
			Name:        NameAge,
			Label:       "Age (years)",
			Type:        TypeNumber,
			Required:    true,
			Placeholder: "Age in years",
			Min:         Float(0),
			Max:         Float(30),
			Default:     String(""),
		},
		{
			Name:        NameWeight,
			Label:       "Weight (kg)",
			Type:        TypeNumber,
			Required:    true,
			Placeholder: "Weight in kilograms",
			Min:         Float(0),
			Max:         Float(120),
			Default:     String(""),
		},
		{
			Name:     NameStoolType,
			Label:    "Stool type",
			Type:     TypeSelect,
			Required: true,
			Options: []Option{
				{Value: "normal", Label: "Normal"},
				{Value: "soft", Label: "Soft"},
				{Value: "hard", Label: "Hard"},
				{Value: "diarrhea", Label: "Diarrhea"},
				{Value: "mucus", Label: "Mucus present"},
			},
			Default: String(""),
		},
		{
			Name:     NameSymptoms,
			Label:    "Current symptoms",
			Type:     TypeCheckboxMulti,
			Required: true,
			Options: []Option{
				{Value: "lethargy", Label: "Lethargy"},
				{Value: "vomiting", Label: "Vomiting"},
				{Value: "diarrhea", Label: "Diarrhea"},
				{Value: "itching", Label: "Itching"},
				{Value: "gas", Label: "Excess gas"},
				{Value: "bad_breath", Label: "Bad breath"},
				{Value: "none", Label: "None of the above"},
			},
			Default: Strings(),
		},
		{
			Name:        NameBehaviorNotes,
			Label:       "Behavior notes",
			Type:        TypeTextarea,
			Placeholder: "Anything else we should know?",
			MaxLength:   Int(1000),
			Default:     String(""),
		},
	}
}

var requiredNames = func() map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range Required() {
		out[t.Name] = struct{}{}
	}
	return out
}()

// IsRequiredName reports whether name belongs to the required template set.
func IsRequiredName(name string) bool {
	_, ok := requiredNames[name]
	return ok
}

// RequiredNames returns the required template names in order.
func RequiredNames() []string {
	templates := Required()
	out := make([]string, len(templates))
	for i, t := range templates {
		out[i] = t.Name
	}
	return out
}
