// Package branding normalises the back office colour settings and turns them
// into a go-theme manifest and the published brand stylesheet.
package branding

import (
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-pawhealth/pkg/render/template"
	"github.com/goliatone/go-pawhealth/pkg/render/template/pongo"
)

// Setting keys as stored by the backend.
const (
	KeyBgOffwhite   = "bg_offwhite"
	KeyBgCharcoal   = "bg_charcoal"
	KeyBgMidgrey    = "bg_midgrey"
	KeyTextOffwhite = "text_offwhite"
	KeyTextCharcoal = "text_charcoal"
	KeyTextMidgrey  = "text_midgrey"
)

const (
	offwhite = "#f0f0ec"
	charcoal = "#373737"
	midgrey  = "#5A5A5A"
)

// ThemeName is the manifest name of the brand theme.
const ThemeName = "pawhealth-brand"

var keys = []string{KeyBgOffwhite, KeyBgCharcoal, KeyBgMidgrey, KeyTextOffwhite, KeyTextCharcoal, KeyTextMidgrey}

// aliases lists the accepted input spellings per key, canonical key first.
var aliases = map[string][]string{
	KeyBgOffwhite:   {KeyBgOffwhite, "bgOffwhite", "brandOffwhite", "brand_offwhite"},
	KeyBgCharcoal:   {KeyBgCharcoal, "bgCharcoal", "brandCharcoal", "brand_charcoal"},
	KeyBgMidgrey:    {KeyBgMidgrey, "bgMidgrey", "brandMidgrey", "brand_midgrey", "brandMidGrey"},
	KeyTextOffwhite: {KeyTextOffwhite, "textOffwhite", "textOffWhite"},
	KeyTextCharcoal: {KeyTextCharcoal, "textCharcoal"},
	KeyTextMidgrey:  {KeyTextMidgrey, "textMidgrey"},
}

var hexPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{3}([0-9a-fA-F]{3})?$`)

//go:embed templates/*.tpl
var templateFS embed.FS

// Settings are the brand colours.
type Settings struct {
	BgOffwhite   string `json:"bg_offwhite" yaml:"bg_offwhite"`
	BgCharcoal   string `json:"bg_charcoal" yaml:"bg_charcoal"`
	BgMidgrey    string `json:"bg_midgrey" yaml:"bg_midgrey"`
	TextOffwhite string `json:"text_offwhite" yaml:"text_offwhite"`
	TextCharcoal string `json:"text_charcoal" yaml:"text_charcoal"`
	TextMidgrey  string `json:"text_midgrey" yaml:"text_midgrey"`
}

// Defaults returns the stock palette.
func Defaults() Settings {
	return Settings{
		BgOffwhite:   offwhite,
		BgCharcoal:   charcoal,
		BgMidgrey:    midgrey,
		TextOffwhite: offwhite,
		TextCharcoal: charcoal,
		TextMidgrey:  midgrey,
	}
}

// NormalizeHex trims raw and prefixes "#". Anything that is not 3 or 6 hex
// digits yields fallback.
func NormalizeHex(raw, fallback string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return fallback
	}
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	if !hexPattern.MatchString(v) {
		return fallback
	}
	return v
}

// FromMap reads settings from src, accepting the alternate key spellings.
// The first spelling present wins; missing or invalid values take the
// default.
func FromMap(src map[string]string) Settings {
	out := Defaults()
	for _, key := range keys {
		for _, alias := range aliases[key] {
			if raw, ok := src[alias]; ok {
				out.set(key, NormalizeHex(raw, out.get(key)))
				break
			}
		}
	}
	return out
}

// Normalize applies NormalizeHex to every colour.
func (s Settings) Normalize() Settings {
	def := Defaults()
	out := s
	for _, key := range keys {
		out.set(key, NormalizeHex(s.get(key), def.get(key)))
	}
	return out
}

// Map returns the settings keyed by canonical key.
func (s Settings) Map() map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		out[key] = s.get(key)
	}
	return out
}

func (s Settings) get(key string) string {
	switch key {
	case KeyBgOffwhite:
		return s.BgOffwhite
	case KeyBgCharcoal:
		return s.BgCharcoal
	case KeyBgMidgrey:
		return s.BgMidgrey
	case KeyTextOffwhite:
		return s.TextOffwhite
	case KeyTextCharcoal:
		return s.TextCharcoal
	case KeyTextMidgrey:
		return s.TextMidgrey
	}
	return ""
}

func (s *Settings) set(key, value string) {
	switch key {
	case KeyBgOffwhite:
		s.BgOffwhite = value
	case KeyBgCharcoal:
		s.BgCharcoal = value
	case KeyBgMidgrey:
		s.BgMidgrey = value
	case KeyTextOffwhite:
		s.TextOffwhite = value
	case KeyTextCharcoal:
		s.TextCharcoal = value
	case KeyTextMidgrey:
		s.TextMidgrey = value
	}
}

// Tokens returns theme tokens named "brand-bg-offwhite" and so on.
func (s Settings) Tokens() map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		out[tokenName(key)] = s.get(key)
	}
	return out
}

func tokenName(key string) string {
	return "brand-" + strings.ReplaceAll(key, "_", "-")
}

// CSSVars maps every token to a custom property ("--brand-bg-offwhite").
func (s Settings) CSSVars() map[string]string {
	tokens := s.Tokens()
	out := make(map[string]string, len(tokens))
	for name, value := range tokens {
		out["--"+name] = value
	}
	return out
}

// Manifest describes the palette as a go-theme manifest.
func (s Settings) Manifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    ThemeName,
		Version: "1.0.0",
		Tokens:  s.Tokens(),
	}
}

// Provider returns a theme registry holding the brand manifest.
func (s Settings) Provider() (theme.ThemeProvider, error) {
	registry := theme.NewRegistry()
	if err := registry.Register(s.Manifest()); err != nil {
		return nil, fmt.Errorf("branding: register theme: %w", err)
	}
	return registry, nil
}

// RendererConfig is the theme configuration handed to renderers.
func (s Settings) RendererConfig() *theme.RendererConfig {
	return &theme.RendererConfig{
		Theme:   ThemeName,
		Variant: "default",
		Tokens:  s.Tokens(),
		CSSVars: s.CSSVars(),
	}
}

// Stylesheet renders styles.css from the embedded template.
type Stylesheet struct {
	engine template.Engine
}

// NewStylesheet prepares the stylesheet template engine.
func NewStylesheet() (*Stylesheet, error) {
	files, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine, err := pongo.New(pongo.WithFS(files), pongo.WithSetName("branding"))
	if err != nil {
		return nil, err
	}
	return &Stylesheet{engine: engine}, nil
}

// Render returns the stylesheet for s after normalisation.
func (st *Stylesheet) Render(s Settings) (string, error) {
	s = s.Normalize()
	data := make(map[string]any, len(keys)+1)
	vars := make([]map[string]string, 0, len(keys))
	for _, key := range keys {
		data[key] = s.get(key)
		vars = append(vars, map[string]string{"name": "--" + tokenName(key), "value": s.get(key)})
	}
	data["vars"] = vars
	css, err := st.engine.RenderTemplate("styles.css", data)
	if err != nil {
		return "", fmt.Errorf("branding: render stylesheet: %w", err)
	}
	return css, nil
}
