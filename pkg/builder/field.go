package builder

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-pawhealth/pkg/fields"
)

// Field is an onboarding form field under construction. Unlike intake
// instances it always carries a generated id.
type Field struct {
	ID string `json:"id"`
	fields.Instance
}

// Clone returns a deep copy of f.
func (f Field) Clone() Field {
	return Field{ID: f.ID, Instance: f.Instance.Clone()}
}

// UnmarshalJSON decodes the id alongside the lenient instance attributes.
func (f *Field) UnmarshalJSON(data []byte) error {
	var head struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("builder: decode field: %w", err)
	}
	var inst fields.Instance
	if err := json.Unmarshal(data, &inst); err != nil {
		return err
	}
	f.Instance = inst
	f.ID = ""
	raw := bytes.TrimSpace(head.ID)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if err := json.Unmarshal(raw, &f.ID); err != nil {
			f.ID = string(raw)
		}
	}
	return nil
}

// Declarations converts fields into server declarations, as consumed by the
// intake merge.
func Declarations(list []Field) []fields.Declaration {
	out := make([]fields.Declaration, len(list))
	for i, f := range list {
		out[i] = fields.Declare(f.Instance)
	}
	return out
}

// Instances returns the fields as an intake field list.
func Instances(list []Field) fields.List {
	out := make(fields.List, len(list))
	for i, f := range list {
		out[i] = f.Instance.Clone()
	}
	return out
}
