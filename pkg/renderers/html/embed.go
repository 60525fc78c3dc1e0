package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded template bundle so callers can start from
// it when supplying overrides.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
