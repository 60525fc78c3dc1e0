package branding_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pawhealth/pkg/branding"
)

func TestNormalizeHex(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", "#000"},
		{"   ", "#000"},
		{"abc", "#abc"},
		{" #A1B2C3 ", "#A1B2C3"},
		{"#abcd", "#000"},
		{"zzzzzz", "#000"},
		{"#12345g", "#000"},
	}
	for _, tc := range cases {
		if got := branding.NormalizeHex(tc.in, "#000"); got != tc.want {
			t.Errorf("NormalizeHex(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFromMap_AcceptsAlternateKeys(t *testing.T) {
	got := branding.FromMap(map[string]string{
		"bgOffwhite":      "fff",
		"brand_charcoal":  "#111111",
		"brandMidGrey":    "not-a-colour",
		"textOffWhite":    "#eee",
		"text_charcoal":   "222",
		"bg_offwhite_old": "#999",
	})
	want := branding.Settings{
		BgOffwhite:   "#fff",
		BgCharcoal:   "#111111",
		BgMidgrey:    "#5A5A5A",
		TextOffwhite: "#eee",
		TextCharcoal: "#222",
		TextMidgrey:  "#5A5A5A",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestFromMap_CanonicalKeyWins(t *testing.T) {
	got := branding.FromMap(map[string]string{"bg_offwhite": "#123", "bgOffwhite": "#456"})
	if got.BgOffwhite != "#123" {
		t.Fatalf("expected canonical key to win, got %s", got.BgOffwhite)
	}
}

func TestThemeArtifacts(t *testing.T) {
	s := branding.Defaults()
	manifest := s.Manifest()
	if manifest.Name != branding.ThemeName {
		t.Fatalf("manifest name %q", manifest.Name)
	}
	if manifest.Tokens["brand-bg-charcoal"] != "#373737" {
		t.Fatalf("tokens %v", manifest.Tokens)
	}
	cfg := s.RendererConfig()
	if cfg.CSSVars["--brand-text-midgrey"] != "#5A5A5A" {
		t.Fatalf("css vars %v", cfg.CSSVars)
	}
	if _, err := s.Provider(); err != nil {
		t.Fatalf("provider: %v", err)
	}
}

func TestStylesheet_Render(t *testing.T) {
	sheet, err := branding.NewStylesheet()
	if err != nil {
		t.Fatalf("new stylesheet: %v", err)
	}
	css, err := sheet.Render(branding.Settings{BgOffwhite: "abcdef", TextCharcoal: "bogus"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"--brand-bg-offwhite: #abcdef;",
		".bg-brand-offwhite {\n  background-color: #abcdef !important;",
		".text-brand-charcoal {\n  color: #373737 !important;",
		".bg-brand-midgrey, .to-brand-midgrey, .from-brand-midgrey {\n  background-color: #5A5A5A !important;",
	} {
		if !strings.Contains(css, want) {
			t.Errorf("stylesheet missing %q\n%s", want, css)
		}
	}
}
