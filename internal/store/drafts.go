package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Draft is a queued write that could not reach the server.
type Draft struct {
	ID        string
	Kind      string
	Payload   json.RawMessage
	Attempts  int
	LastError string
	CreatedAt time.Time
}

// SaveDraft queues payload under kind and returns the stored draft.
func (s *Store) SaveDraft(ctx context.Context, kind string, payload any) (Draft, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Draft{}, fmt.Errorf("store: encode draft: %w", err)
	}
	now := time.Now().UTC()
	d := Draft{ID: s.newID(now), Kind: kind, Payload: raw, CreatedAt: now}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO drafts (id, kind, payload, created_at) VALUES (?, ?, ?, ?)`,
		d.ID, d.Kind, string(d.Payload), now.Format(time.RFC3339Nano))
	if err != nil {
		return Draft{}, fmt.Errorf("store: save draft: %w", err)
	}
	return d, nil
}

// Drafts lists the drafts of kind, oldest first.
func (s *Store) Drafts(ctx context.Context, kind string) ([]Draft, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, payload, attempts, last_error, created_at
		 FROM drafts WHERE kind = ? ORDER BY id`, kind)
	if err != nil {
		return nil, fmt.Errorf("store: list drafts: %w", err)
	}
	defer rows.Close()

	var out []Draft
	for rows.Next() {
		var (
			d         Draft
			payload   string
			lastError sql.NullString
			created   string
		)
		if err := rows.Scan(&d.ID, &d.Kind, &payload, &d.Attempts, &lastError, &created); err != nil {
			return nil, fmt.Errorf("store: scan draft: %w", err)
		}
		d.Payload = json.RawMessage(payload)
		d.LastError = lastError.String
		d.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDraft removes a draft.
func (s *Store) DeleteDraft(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: draft %s", ErrNotFound, id)
	}
	return nil
}

// MarkDraftFailed records a failed retry of a draft.
func (s *Store) MarkDraftFailed(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE drafts SET attempts = attempts + 1, last_error = ? WHERE id = ?`, msg, id)
	if err != nil {
		return fmt.Errorf("store: mark draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: draft %s", ErrNotFound, id)
	}
	return nil
}
