package builder

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-pawhealth/pkg/fields"
)

// PaletteEntry is one draggable element type.
type PaletteEntry struct {
	Type  fields.FieldType `json:"type"`
	Label string           `json:"label"`
}

var palette = []PaletteEntry{
	{Type: fields.TypeText, Label: "Text"},
	{Type: fields.TypeTextarea, Label: "Paragraph"},
	{Type: fields.TypeNumber, Label: "Number"},
	{Type: fields.TypeSelect, Label: "Dropdown"},
	{Type: fields.TypeCheckboxMulti, Label: "Checkboxes"},
	{Type: fields.TypeCheckboxBool, Label: "Checkbox"},
	{Type: fields.TypeRadio, Label: "Multiple choice"},
	{Type: fields.TypeRange, Label: "Slider"},
	{Type: fields.TypeDate, Label: "Date"},
	{Type: fields.TypeEmail, Label: "Email"},
	{Type: fields.TypeTel, Label: "Phone"},
	{Type: fields.TypeURL, Label: "Website"},
}

// Palette returns the element types fields can be created from.
func Palette() []PaletteEntry {
	out := make([]PaletteEntry, len(palette))
	copy(out, palette)
	return out
}

func paletteEntry(t fields.FieldType) (PaletteEntry, bool) {
	for _, entry := range palette {
		if entry.Type == t {
			return entry, true
		}
	}
	return PaletteEntry{Type: t, Label: DefaultLabeler(string(t))}, false
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewFieldID returns an id of the form field_<unix ms>_<9 base36 chars>.
func NewFieldID(at time.Time) string {
	var suffix strings.Builder
	for range 9 {
		suffix.WriteByte(idAlphabet[rand.IntN(len(idAlphabet))])
	}
	return fmt.Sprintf("field_%s_%s", strconv.FormatInt(at.UnixMilli(), 10), suffix.String())
}
