// Package intake models the dog intake form: value edits over a merged field
// list, required-field validation and the create/update payloads sent to the
// dog record API.
package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/goliatone/go-pawhealth/pkg/client"
	"github.com/goliatone/go-pawhealth/pkg/fields"
)

var (
	// ErrFieldIndex is returned by UpdateValue for an index outside the form.
	ErrFieldIndex = errors.New("intake: field index out of range")
	// ErrUnknownField is returned by SetValue for a name not in the form.
	ErrUnknownField = errors.New("intake: unknown field")
	// ErrInvalid is returned by Submit while any field is in error.
	ErrInvalid = errors.New("intake: form has invalid fields")
	// ErrSubmitInFlight is returned by Submit while another submission of the
	// same form is outstanding.
	ErrSubmitInFlight = errors.New("intake: submission already in progress")
)

// DogWriter persists intake payloads.
type DogWriter interface {
	CreateDog(ctx context.Context, input client.DogInput) (client.Dog, error)
	UpdateDog(ctx context.Context, id string, input client.DogInput) (client.Dog, error)
}

// Form is the edit model for one intake session.
type Form struct {
	mu         sync.RWMutex
	fields     fields.List
	submitting atomic.Bool
	logger     *zap.Logger
}

// Option configures a Form.
type Option func(*Form)

// WithLogger attaches a logger used for submit diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New returns a form over a copy of list.
func New(list fields.List, options ...Option) *Form {
	f := &Form{
		fields: list.Clone(),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Fields returns a copy of the current field list.
func (f *Form) Fields() fields.List {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.fields.Clone()
}

// Len reports the number of fields.
func (f *Form) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.fields)
}

// Field returns the named field.
func (f *Form) Field(name string) (fields.Instance, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	field, ok := f.fields.Lookup(name)
	if !ok {
		return fields.Instance{}, false
	}
	return field.Clone(), true
}

// UpdateValue replaces the value of the field at index. The value is coerced
// to the field's type, so checkbox-multi fields always hold a list.
func (f *Form) UpdateValue(index int, value fields.Value) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.fields) {
		return fmt.Errorf("%w: %d", ErrFieldIndex, index)
	}
	f.fields[index].Value = fields.Coerce(f.fields[index].Type, value)
	return nil
}

// SetValue replaces the value of the named field.
func (f *Form) SetValue(name string, value fields.Value) error {
	f.mu.RLock()
	idx := f.fields.Index(name)
	f.mu.RUnlock()
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f.UpdateValue(idx, value)
}

// Hydrate copies values from a previously saved field list onto same-name
// fields and appends saved fields the form does not know.
func (f *Form) Hydrate(saved fields.List) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, prior := range saved {
		if prior.Name == "" {
			continue
		}
		if idx := f.fields.Index(prior.Name); idx >= 0 {
			f.fields[idx].Value = fields.Coerce(f.fields[idx].Type, prior.Value)
			continue
		}
		carried := prior.Clone()
		carried.Value = fields.Coerce(carried.Type, carried.Value)
		f.fields = append(f.fields, carried)
	}
}

// IsFieldInError reports whether field is required but has no usable value.
func (f *Form) IsFieldInError(field fields.Instance) bool {
	return IsFieldInError(field)
}

// HasAnyError reports whether any field is in error.
func (f *Form) HasAnyError() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, field := range f.fields {
		if IsFieldInError(field) {
			return true
		}
	}
	return false
}

// Submitting reports whether a submission is outstanding.
func (f *Form) Submitting() bool { return f.submitting.Load() }

// Submit validates the form and creates the dog (empty dogID) or updates it.
// Validation failures never reach the network. On failure the form values
// are left untouched so the caller can retry.
func (f *Form) Submit(ctx context.Context, w DogWriter, dogID string) (client.Dog, error) {
	if w == nil {
		return client.Dog{}, errors.New("intake: dog writer is required")
	}
	if issues := f.Validate(); len(issues) > 0 {
		return client.Dog{}, &ValidationError{Issues: issues}
	}
	if !f.submitting.CompareAndSwap(false, true) {
		return client.Dog{}, ErrSubmitInFlight
	}
	defer f.submitting.Store(false)

	var (
		dog client.Dog
		err error
	)
	if dogID == "" {
		dog, err = w.CreateDog(ctx, f.CreatePayload())
	} else {
		dog, err = w.UpdateDog(ctx, dogID, f.UpdatePayload())
	}
	if err != nil {
		f.logger.Warn("intake submit failed",
			zap.String("dog_id", dogID),
			zap.Error(err),
		)
		return client.Dog{}, fmt.Errorf("intake: submit: %w", err)
	}
	f.logger.Info("intake submitted", zap.String("dog_id", dog.ID))
	return dog, nil
}
