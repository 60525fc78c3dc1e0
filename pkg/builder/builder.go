// Package builder implements the admin onboarding form builder: a freely
// reorderable list of fields created from a palette of element types, edited
// property by property and saved as the universal onboarding form.
package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-pawhealth/pkg/fields"
)

var (
	// ErrUnknownType is returned when dropping an element type the palette
	// does not offer.
	ErrUnknownType = errors.New("builder: unknown element type")
	// ErrFieldNotFound is returned for ids that match no field.
	ErrFieldNotFound = errors.New("builder: field not found")
	// ErrIndex is returned by MoveField for out of range positions.
	ErrIndex = errors.New("builder: index out of range")
	// ErrDuplicateName is returned by UpdateField when the new name is
	// already taken by another field.
	ErrDuplicateName = errors.New("builder: field name already in use")
)

// Store reads and replaces the stored onboarding form.
type Store interface {
	OnboardingFormJSON(ctx context.Context) (json.RawMessage, error)
	UpdateOnboardingForm(ctx context.Context, form any) error
}

// Builder holds the field list of one editing session.
type Builder struct {
	fields []Field
	store  Store
	now    func() time.Time
	newID  func(time.Time) string
	logger *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithStore sets the backend used by Load and Save.
func WithStore(store Store) Option {
	return func(b *Builder) { b.store = store }
}

// WithClock overrides the clock used for date defaults and ids.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDGenerator overrides field id generation.
func WithIDGenerator(gen func(time.Time) string) Option {
	return func(b *Builder) {
		if gen != nil {
			b.newID = gen
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New returns an empty builder.
func New(options ...Option) *Builder {
	b := &Builder{
		now:    time.Now,
		newID:  NewFieldID,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Fields returns a copy of the field list.
func (b *Builder) Fields() []Field {
	out := make([]Field, len(b.fields))
	for i, f := range b.fields {
		out[i] = f.Clone()
	}
	return out
}

// SetFields replaces the field list. Fields without an id get one.
func (b *Builder) SetFields(list []Field) {
	b.fields = make([]Field, 0, len(list))
	for _, f := range list {
		f = f.Clone()
		if strings.TrimSpace(f.ID) == "" {
			f.ID = b.uniqueID()
		}
		b.fields = append(b.fields, f)
	}
}

func (b *Builder) index(id string) int {
	return slices.IndexFunc(b.fields, func(f Field) bool { return f.ID == id })
}

func (b *Builder) nameTaken(name, exceptID string) bool {
	return slices.ContainsFunc(b.fields, func(f Field) bool {
		return f.Name == name && f.ID != exceptID
	})
}

func (b *Builder) uniqueID() string {
	for {
		id := b.newID(b.now())
		if b.index(id) < 0 {
			return id
		}
	}
}

// DropNewField creates a field of elementType and inserts it at index,
// clamped to the list bounds.
func (b *Builder) DropNewField(elementType fields.FieldType, index int) (Field, error) {
	if !elementType.Valid() {
		return Field{}, fmt.Errorf("%w: %q", ErrUnknownType, elementType)
	}
	field := b.newField(elementType)
	index = max(0, min(index, len(b.fields)))
	b.fields = slices.Insert(b.fields, index, field)
	b.logger.Debug("builder field added",
		zap.String("id", field.ID),
		zap.String("type", string(elementType)),
		zap.Int("index", index),
	)
	return field.Clone(), nil
}

func (b *Builder) newField(t fields.FieldType) Field {
	prefix := strings.ReplaceAll(string(t), "-", "_")
	name := ""
	for n := 1; ; n++ {
		name = fmt.Sprintf("%s_%d", prefix, n)
		if !b.nameTaken(name, "") {
			break
		}
	}
	entry, _ := paletteEntry(t)
	tmpl := fields.Template{
		Name:    name,
		Label:   entry.Label,
		Type:    t,
		Default: b.defaultValue(t),
	}
	if t.HasOptions() {
		tmpl.Options = []fields.Option{{Value: "option1", Label: "Option 1"}}
	}
	return Field{ID: b.uniqueID(), Instance: tmpl.Instance()}
}

func (b *Builder) defaultValue(t fields.FieldType) fields.Value {
	switch t {
	case fields.TypeCheckboxBool:
		return fields.Bool(false)
	case fields.TypeNumber:
		return fields.Number(0)
	case fields.TypeDate:
		return fields.String(b.now().Format(time.DateOnly))
	default:
		return fields.ZeroValue(t)
	}
}

// DeleteField removes the field with id.
func (b *Builder) DeleteField(id string) error {
	idx := b.index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	b.fields = slices.Delete(b.fields, idx, idx+1)
	return nil
}

// DuplicateField inserts a copy of the field right after it. The copy gets a
// fresh id, its name suffixed "_copy" and its label suffixed " (Copy)".
func (b *Builder) DuplicateField(id string) (Field, error) {
	idx := b.index(id)
	if idx < 0 {
		return Field{}, fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	dup := b.fields[idx].Clone()
	dup.ID = b.uniqueID()
	dup.Name += "_copy"
	dup.Label += " (Copy)"
	b.fields = slices.Insert(b.fields, idx+1, dup)
	return dup.Clone(), nil
}

// MoveField moves the field at from in front of the field currently at to.
// A to equal to the list length moves the field to the end.
func (b *Builder) MoveField(from, to int) error {
	n := len(b.fields)
	if from < 0 || from >= n || to < 0 || to > n {
		return fmt.Errorf("%w: move %d to %d of %d", ErrIndex, from, to, n)
	}
	if to > from {
		to--
	}
	field := b.fields[from]
	b.fields = slices.Delete(b.fields, from, from+1)
	b.fields = slices.Insert(b.fields, to, field)
	return nil
}

// UpdateField replaces the field with the same id. The value is coerced to
// the (possibly changed) type.
func (b *Builder) UpdateField(field Field) error {
	idx := b.index(field.ID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, field.ID)
	}
	field = field.Clone()
	field.Name = strings.TrimSpace(field.Name)
	if field.Name == "" {
		return fmt.Errorf("builder: field %s: name is required", field.ID)
	}
	if b.nameTaken(field.Name, field.ID) {
		return fmt.Errorf("%w: %q", ErrDuplicateName, field.Name)
	}
	if !field.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, field.Type)
	}
	field.Value = fields.Coerce(field.Type, field.Value)
	b.fields[idx] = field
	return nil
}

// ExportJSON returns the field list as an indented JSON array.
func (b *Builder) ExportJSON() ([]byte, error) {
	list := b.fields
	if list == nil {
		list = []Field{}
	}
	out, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("builder: export json: %w", err)
	}
	return out, nil
}

// ImportJSON replaces the field list with a JSON array of fields.
func (b *Builder) ImportJSON(data []byte) error {
	var list []Field
	if len(strings.TrimSpace(string(data))) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("builder: import json: %w", err)
		}
	}
	b.SetFields(list)
	return nil
}

// Load replaces the field list with the stored onboarding form.
func (b *Builder) Load(ctx context.Context) error {
	if b.store == nil {
		return errors.New("builder: no store configured")
	}
	raw, err := b.store.OnboardingFormJSON(ctx)
	if err != nil {
		return fmt.Errorf("builder: load: %w", err)
	}
	return b.ImportJSON(raw)
}

// Save replaces the stored onboarding form with the current field list.
func (b *Builder) Save(ctx context.Context) error {
	if b.store == nil {
		return errors.New("builder: no store configured")
	}
	list := b.Fields()
	if err := b.store.UpdateOnboardingForm(ctx, list); err != nil {
		b.logger.Warn("onboarding form save failed", zap.Error(err))
		return fmt.Errorf("builder: save: %w", err)
	}
	b.logger.Info("onboarding form saved", zap.Int("fields", len(list)))
	return nil
}
