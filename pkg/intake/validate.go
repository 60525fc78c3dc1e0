package intake

import (
	"fmt"
	"net/mail"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-pawhealth/pkg/fields"
)

// IsFieldInError reports whether a required field lacks a usable value: an
// empty list for checkbox-multi, an empty or unparseable value for number and
// an empty value otherwise. Optional fields are never in error.
func IsFieldInError(field fields.Instance) bool {
	if !field.Required {
		return false
	}
	switch field.Type {
	case fields.TypeCheckboxMulti:
		return field.Value.Kind() != fields.KindList || len(field.Value.Items()) == 0
	case fields.TypeNumber:
		_, ok := field.Value.Float()
		return !ok
	default:
		return field.Value.IsEmpty()
	}
}

// Issue is a validation problem with one field.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the issues that blocked a submission.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("intake: %s: %s", e.Issues[0].Field, e.Issues[0].Message)
	}
	return fmt.Sprintf("intake: %d invalid fields", len(e.Issues))
}

// Is matches ErrInvalid.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// Validate returns the issues for every field: required values first, then
// bounds, length, choice and format constraints on non-empty values.
func (f *Form) Validate() []Issue {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var issues []Issue
	for _, field := range f.fields {
		if msg := FieldError(field); msg != "" {
			issues = append(issues, Issue{Field: field.Name, Message: msg})
		}
	}
	return issues
}

// Errors returns the validation message per field name.
func (f *Form) Errors() map[string]string {
	issues := f.Validate()
	if len(issues) == 0 {
		return nil
	}
	out := make(map[string]string, len(issues))
	for _, issue := range issues {
		out[issue.Field] = issue.Message
	}
	return out
}

// FieldError returns a user facing message describing why field is invalid,
// or "" when it is valid. A server supplied errorText replaces the required
// message.
func FieldError(field fields.Instance) string {
	if IsFieldInError(field) {
		if text := strings.TrimSpace(field.ErrorText); text != "" {
			return text
		}
		if field.Type == fields.TypeNumber && !field.Value.IsEmpty() {
			return "must be a number"
		}
		return "is required"
	}
	if field.Value.IsEmpty() {
		return ""
	}

	switch field.Type {
	case fields.TypeNumber, fields.TypeRange:
		n, ok := field.Value.Float()
		if !ok {
			return "must be a number"
		}
		if field.Min != nil && n < *field.Min {
			return fmt.Sprintf("must be at least %v", *field.Min)
		}
		if field.Max != nil && n > *field.Max {
			return fmt.Sprintf("must be at most %v", *field.Max)
		}
	case fields.TypeSelect, fields.TypeRadio:
		if len(field.Options) > 0 && !hasOption(field.Options, field.Value.Str()) {
			return "is not one of the available choices"
		}
	case fields.TypeCheckboxMulti:
		for _, item := range field.Value.Items() {
			if len(field.Options) > 0 && !hasOption(field.Options, item) {
				return fmt.Sprintf("%q is not one of the available choices", item)
			}
		}
	case fields.TypeEmail:
		if _, err := mail.ParseAddress(field.Value.Str()); err != nil {
			return "must be a valid email address"
		}
	case fields.TypeURL:
		u, err := url.Parse(field.Value.Str())
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "must be a valid URL"
		}
	case fields.TypeDate:
		if _, err := time.Parse(time.DateOnly, field.Value.Str()); err != nil {
			return "must be a date (YYYY-MM-DD)"
		}
	}

	if field.MaxLength != nil && field.Value.Kind() == fields.KindString &&
		utf8.RuneCountInString(field.Value.Str()) > *field.MaxLength {
		return fmt.Sprintf("must be at most %d characters", *field.MaxLength)
	}
	return ""
}

func hasOption(options []fields.Option, value string) bool {
	return slices.ContainsFunc(options, func(opt fields.Option) bool {
		return opt.Value == value
	})
}
