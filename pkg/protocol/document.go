// Package protocol models a dog's care protocol as edited by admins: four
// protected sections that always exist plus any number of custom sections,
// each an ordered list of title/description items.
package protocol

import (
	"fmt"
	"slices"
	"strings"
)

// Keys of the protected sections, in document order.
const (
	KeyMealPlan    = "daily_meal_plan"
	KeySupplements = "supplements"
	KeyLifestyle   = "lifestyle_recommendations"
	KeyNextSteps   = "next_steps"

	keyCustomSections = "custom_sections"
)

var protectedKeys = []string{KeyMealPlan, KeySupplements, KeyLifestyle, KeyNextSteps}

var itemPrefixes = map[string]string{
	KeyMealPlan:    "meal",
	KeySupplements: "supplement",
	KeyLifestyle:   "lifestyle",
	KeyNextSteps:   "step",
}

// ProtectedKeys returns the protected section keys in document order.
func ProtectedKeys() []string { return slices.Clone(protectedKeys) }

// IsProtected reports whether key names a protected section.
func IsProtected(key string) bool { return slices.Contains(protectedKeys, key) }

// Item is one entry of a section.
type Item struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Blank reports whether both title and description are empty after trimming.
func (i Item) Blank() bool {
	return strings.TrimSpace(i.Title) == "" && strings.TrimSpace(i.Description) == ""
}

// Section is a user defined section.
type Section struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"section_name" yaml:"section_name"`
	Items []Item `json:"items" yaml:"items"`
}

func (s Section) clone() Section {
	s.Items = slices.Clone(s.Items)
	if s.Items == nil {
		s.Items = []Item{}
	}
	return s
}

// Document is the canonical protocol shape.
type Document struct {
	MealPlan       []Item    `json:"daily_meal_plan" yaml:"daily_meal_plan"`
	Supplements    []Item    `json:"supplements" yaml:"supplements"`
	Lifestyle      []Item    `json:"lifestyle_recommendations" yaml:"lifestyle_recommendations"`
	NextSteps      []Item    `json:"next_steps" yaml:"next_steps"`
	CustomSections []Section `json:"custom_sections,omitempty" yaml:"custom_sections,omitempty"`
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := Document{
		MealPlan:    cloneItems(d.MealPlan),
		Supplements: cloneItems(d.Supplements),
		Lifestyle:   cloneItems(d.Lifestyle),
		NextSteps:   cloneItems(d.NextSteps),
	}
	if d.CustomSections != nil {
		out.CustomSections = make([]Section, len(d.CustomSections))
		for i, s := range d.CustomSections {
			out.CustomSections[i] = s.clone()
		}
	}
	return out
}

// Protected returns the items of the protected section key.
func (d *Document) Protected(key string) ([]Item, error) {
	ptr, err := d.protected(key)
	if err != nil {
		return nil, err
	}
	return *ptr, nil
}

func (d *Document) protected(key string) (*[]Item, error) {
	switch key {
	case KeyMealPlan:
		return &d.MealPlan, nil
	case KeySupplements:
		return &d.Supplements, nil
	case KeyLifestyle:
		return &d.Lifestyle, nil
	case KeyNextSteps:
		return &d.NextSteps, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, key)
	}
}

func (d *Document) customIndex(id string) int {
	return slices.IndexFunc(d.CustomSections, func(s Section) bool { return s.ID == id })
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	return slices.Clone(items)
}

// DefaultItems returns the canned items used when a protected section is
// missing from a stored protocol.
func DefaultItems(key string) []Item {
	var titles [][2]string
	switch key {
	case KeyMealPlan:
		titles = [][2]string{
			{"Breakfast", "Measured portion of the main diet with fresh water."},
			{"Lunch", "Light meal or a portion of vegetables for adult dogs."},
			{"Dinner", "Main portion, at least two hours before bedtime."},
			{"Treats", "Keep treats under ten percent of daily calories."},
		}
	case KeySupplements:
		titles = [][2]string{
			{"Probiotic", "Daily probiotic to support digestion."},
			{"Omega-3", "Fish oil for skin, coat and joints."},
			{"Fibre", "Pumpkin or psyllium when stool is loose."},
			{"Multivitamin", "Only if the diet is not complete and balanced."},
		}
	case KeyLifestyle:
		titles = [][2]string{
			{"Walks", "Two walks a day matched to age and breed."},
			{"Play", "Fifteen minutes of active play."},
			{"Rest", "A quiet sleeping spot away from foot traffic."},
			{"Grooming", "Weekly brushing and nail checks."},
		}
	case KeyNextSteps:
		titles = [][2]string{
			{"Track stool", "Log stool type daily for two weeks."},
			{"Weigh in", "Record weight at the end of each week."},
			{"Review", "Book a follow up review in one month."},
			{"Vet check", "See a vet if symptoms persist or worsen."},
		}
	default:
		return []Item{}
	}
	prefix := itemPrefixes[key]
	out := make([]Item, len(titles))
	for i, t := range titles {
		out[i] = Item{ID: fmt.Sprintf("%s-%d", prefix, i+1), Title: t[0], Description: t[1]}
	}
	return out
}
