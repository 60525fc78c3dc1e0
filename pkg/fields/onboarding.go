package fields

import (
	_ "embed"
	"slices"
)

//go:embed onboarding_default.json
var defaultOnboarding []byte

// DefaultOnboardingJSON returns the stock onboarding form used before an
// administrator saves one. The document is an array of builder shaped fields
// carrying ids.
func DefaultOnboardingJSON() []byte {
	return slices.Clone(defaultOnboarding)
}

// DefaultOnboarding decodes the stock onboarding form as declarations.
func DefaultOnboarding() ([]Declaration, error) {
	return DecodeDeclarations(defaultOnboarding)
}
