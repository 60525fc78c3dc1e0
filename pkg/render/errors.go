package render

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goliatone/go-pawhealth/pkg/client"
	"github.com/goliatone/go-pawhealth/pkg/intake"
)

// ErrorMapping splits a server error payload into field level and form level
// messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// PayloadAliases maps dog payload keys to the intake field they came from.
var PayloadAliases = map[string]string{
	"weight_kg":     "weight",
	"notes":         "behaviorNotes",
	"date_of_birth": "dob",
}

var wrapperSegments = map[string]struct{}{
	"body":           {},
	"request":        {},
	"payload":        {},
	"data":           {},
	"form_data":      {},
	"fullformfields": {},
}

// MergeFormErrors concatenates form level messages, trimming whitespace and
// dropping blanks and duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload resolves server error locations such as "body.name",
// "/body/form_data/symptoms" or "$.weight_kg" to form field names. Paths
// that match no field become form level errors so messages are not lost.
func MapErrorPayload(form Form, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	names := make(map[string]struct{}, len(form.Fields))
	for _, field := range form.Fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			names[name] = struct{}{}
		}
	}

	for rawPath, messages := range payload {
		messages = normalizeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		name := resolveField(rawPath, names)
		if name == "" {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[name] = append(mapping.Fields[name], messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MapError maps err for display: API field details go through
// MapErrorPayload, and the user facing message of any other failure becomes
// a form level error.
func MapError(form Form, err error) ErrorMapping {
	if err == nil {
		return ErrorMapping{}
	}
	var validation *intake.ValidationError
	if errors.As(err, &validation) {
		return ErrorMapping{Fields: IssueErrors(validation.Issues)}
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		mapping := MapErrorPayload(form, apiErr.Fields)
		if len(mapping.Fields) == 0 {
			mapping.Form = MergeFormErrors(mapping.Form, client.Message(err))
		}
		return mapping
	}
	return ErrorMapping{Form: []string{client.Message(err)}}
}

// IssueErrors groups local validation issues by field.
func IssueErrors(issues []intake.Issue) map[string][]string {
	if len(issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(issues))
	for _, issue := range issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

func resolveField(raw string, names map[string]struct{}) string {
	if isFormLevelKey(raw) {
		return ""
	}
	segments := parsePathSegments(raw)
	for len(segments) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(segments[0])]; !ok {
			break
		}
		segments = segments[1:]
	}
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		if alias, ok := PayloadAliases[segment]; ok {
			segment = alias
		}
		if _, ok := names[segment]; ok {
			return segment
		}
		// Only the first named segment identifies the field.
		return ""
	}
	return ""
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$/.")

	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func normalizeMessages(messages []string) []string {
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "body", "form", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
