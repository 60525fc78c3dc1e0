package tui

// OutputFormat controls how Render serialises the collected values.
type OutputFormat string

const (
	// OutputFormatJSON emits the values as a JSON object keyed by field name.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits one "Label: value" line per field.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme holds the prefixes used for notices printed between prompts.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
