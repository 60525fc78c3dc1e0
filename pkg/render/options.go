package render

import theme "github.com/goliatone/go-theme"

// RenderOptions carry per request data that does not belong to the form.
type RenderOptions struct {
	// Errors are field level messages keyed by field name, usually produced
	// by MapErrorPayload or IssueErrors.
	Errors map[string][]string
	// FormErrors are messages not tied to a field.
	FormErrors []string
	// Hidden inputs emitted alongside the fields.
	Hidden []HiddenField
	// Theme supplies tokens and CSS variables from the brand settings.
	Theme *theme.RendererConfig
}
