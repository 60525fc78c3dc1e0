package protocol

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrUnknownSection is returned for refs that match no section.
	ErrUnknownSection = errors.New("protocol: unknown section")
	// ErrUnknownItem is returned for item ids not present in a section.
	ErrUnknownItem = errors.New("protocol: unknown item")
	// ErrUnknownAttribute is returned by UpdateItem for fields other than
	// title and description.
	ErrUnknownAttribute = errors.New("protocol: unknown item attribute")
	// ErrIndex is returned by move operations for out of range positions.
	ErrIndex = errors.New("protocol: index out of range")
)

// SectionRef addresses a section: either Protected or Custom.
type SectionRef interface {
	sectionRef()
	String() string
}

// Protected refers to one of the fixed sections by key.
type Protected struct{ Key string }

// Custom refers to a custom section by id.
type Custom struct{ ID string }

func (Protected) sectionRef() {}
func (Custom) sectionRef()    {}

func (p Protected) String() string { return p.Key }
func (c Custom) String() string    { return "custom:" + c.ID }

// Item attributes accepted by UpdateItem.
const (
	AttrTitle       = "title"
	AttrDescription = "description"
)

// Writer persists a protocol for a dog.
type Writer interface {
	UpdateProtocol(ctx context.Context, dogID string, protocol any) error
}

// Editor owns a document for one edit session. It is not safe for concurrent
// use.
type Editor struct {
	doc    Document
	logger *zap.Logger
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) EditorOption {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEditor starts an edit session over a copy of doc.
func NewEditor(doc Document, options ...EditorOption) *Editor {
	e := &Editor{doc: doc.Clone(), logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Document returns a copy of the unfiltered working document.
func (e *Editor) Document() Document { return e.doc.Clone() }

func (e *Editor) items(ref SectionRef) (*[]Item, string, error) {
	switch r := ref.(type) {
	case Protected:
		ptr, err := e.doc.protected(r.Key)
		if err != nil {
			return nil, "", err
		}
		return ptr, itemPrefixes[r.Key], nil
	case Custom:
		idx := e.doc.customIndex(r.ID)
		if idx < 0 {
			return nil, "", fmt.Errorf("%w: %s", ErrUnknownSection, r)
		}
		return &e.doc.CustomSections[idx].Items, r.ID, nil
	default:
		return nil, "", fmt.Errorf("%w: %v", ErrUnknownSection, ref)
	}
}

// AddItem appends a blank item to the section and returns it.
func (e *Editor) AddItem(ref SectionRef) (Item, error) {
	items, prefix, err := e.items(ref)
	if err != nil {
		return Item{}, err
	}
	item := Item{ID: freeID(*items, prefix)}
	*items = append(*items, item)
	return item, nil
}

// RemoveItem deletes an item. Protected sections may become empty.
func (e *Editor) RemoveItem(ref SectionRef, itemID string) error {
	items, _, err := e.items(ref)
	if err != nil {
		return err
	}
	idx := itemIndex(*items, itemID)
	if idx < 0 {
		return fmt.Errorf("%w: %s in %s", ErrUnknownItem, itemID, ref)
	}
	*items = slices.Delete(*items, idx, idx+1)
	return nil
}

// UpdateItem sets the title or description of an item.
func (e *Editor) UpdateItem(ref SectionRef, itemID, attr, value string) error {
	items, _, err := e.items(ref)
	if err != nil {
		return err
	}
	idx := itemIndex(*items, itemID)
	if idx < 0 {
		return fmt.Errorf("%w: %s in %s", ErrUnknownItem, itemID, ref)
	}
	switch attr {
	case AttrTitle:
		(*items)[idx].Title = value
	case AttrDescription:
		(*items)[idx].Description = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, attr)
	}
	return nil
}

// MoveItem moves the item at from so that it ends up at index to.
func (e *Editor) MoveItem(ref SectionRef, from, to int) error {
	items, _, err := e.items(ref)
	if err != nil {
		return err
	}
	moved, err := move(*items, from, to)
	if err != nil {
		return err
	}
	*items = moved
	return nil
}

// AddCustomSection appends an empty custom section.
func (e *Editor) AddCustomSection() Section {
	n := len(e.doc.CustomSections) + 1
	id := fmt.Sprintf("custom-%d", n)
	for e.doc.customIndex(id) >= 0 {
		n++
		id = fmt.Sprintf("custom-%d", n)
	}
	section := Section{ID: id, Name: fmt.Sprintf("Section %d", n), Items: []Item{}}
	e.doc.CustomSections = append(e.doc.CustomSections, section)
	return section.clone()
}

// RemoveCustomSection deletes a custom section.
func (e *Editor) RemoveCustomSection(id string) error {
	idx := e.doc.customIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSection, Custom{ID: id})
	}
	e.doc.CustomSections = slices.Delete(e.doc.CustomSections, idx, idx+1)
	return nil
}

// RenameCustomSection changes a custom section's display name.
func (e *Editor) RenameCustomSection(id, name string) error {
	idx := e.doc.customIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSection, Custom{ID: id})
	}
	e.doc.CustomSections[idx].Name = name
	return nil
}

// MoveCustomSection reorders custom sections.
func (e *Editor) MoveCustomSection(from, to int) error {
	moved, err := move(e.doc.CustomSections, from, to)
	if err != nil {
		return err
	}
	e.doc.CustomSections = moved
	return nil
}

// Save returns the document as it should be persisted: blank items removed
// everywhere, custom sections left without items dropped and custom_sections
// omitted when none survive. Protected sections are kept even when empty.
// The working document is not modified.
func (e *Editor) Save() Document {
	out := Document{
		MealPlan:    prune(e.doc.MealPlan),
		Supplements: prune(e.doc.Supplements),
		Lifestyle:   prune(e.doc.Lifestyle),
		NextSteps:   prune(e.doc.NextSteps),
	}
	for _, section := range e.doc.CustomSections {
		items := prune(section.Items)
		if len(items) == 0 {
			continue
		}
		section.Items = items
		out.CustomSections = append(out.CustomSections, section)
	}
	return out
}

// Persist writes the saved document with a full document replace. On
// failure the working document is kept so the edit can be retried.
func (e *Editor) Persist(ctx context.Context, w Writer, dogID string) (Document, error) {
	if w == nil {
		return Document{}, errors.New("protocol: writer is required")
	}
	if strings.TrimSpace(dogID) == "" {
		return Document{}, errors.New("protocol: dog id is required")
	}
	doc := e.Save()
	if err := w.UpdateProtocol(ctx, dogID, doc); err != nil {
		e.logger.Warn("protocol save failed", zap.String("dog_id", dogID), zap.Error(err))
		return Document{}, fmt.Errorf("protocol: save %s: %w", dogID, err)
	}
	e.logger.Info("protocol saved",
		zap.String("dog_id", dogID),
		zap.Int("custom_sections", len(doc.CustomSections)),
	)
	return doc, nil
}

func prune(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if !item.Blank() {
			out = append(out, item)
		}
	}
	return out
}

func itemIndex(items []Item, id string) int {
	return slices.IndexFunc(items, func(item Item) bool { return item.ID == id })
}

func freeID(items []Item, prefix string) string {
	for n := len(items) + 1; ; n++ {
		id := fmt.Sprintf("%s-%d", prefix, n)
		if itemIndex(items, id) < 0 {
			return id
		}
	}
}

// move removes the element at from and inserts it at to.
func move[T any](list []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return nil, fmt.Errorf("%w: move %d to %d of %d", ErrIndex, from, to, len(list))
	}
	out := slices.Clone(list)
	elem := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, elem), nil
}
