package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Progress is the gamification state of one dog.
type Progress struct {
	DogID string
	XP    int
	// Streak counts consecutive active days ending at LastActive.
	Streak     int
	LastActive string
	Badges     []string
}

// Progress loads the gamification state of dogID. Unknown dogs yield zero
// progress.
func (s *Store) Progress(ctx context.Context, dogID string) (Progress, error) {
	p := Progress{DogID: dogID, Badges: []string{}}
	var (
		lastActive sql.NullString
		badges     string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT xp, streak, last_active, badges FROM gamification WHERE dog_id = ?`, dogID).
		Scan(&p.XP, &p.Streak, &lastActive, &badges)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return Progress{}, fmt.Errorf("store: load progress: %w", err)
	}
	p.LastActive = lastActive.String
	if err := json.Unmarshal([]byte(badges), &p.Badges); err != nil {
		return Progress{}, fmt.Errorf("store: decode badges: %w", err)
	}
	return p, nil
}

// SaveProgress replaces the gamification state of p.DogID.
func (s *Store) SaveProgress(ctx context.Context, p Progress) error {
	badges := p.Badges
	if badges == nil {
		badges = []string{}
	}
	raw, err := json.Marshal(badges)
	if err != nil {
		return fmt.Errorf("store: encode badges: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO gamification (dog_id, xp, streak, last_active, badges, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(dog_id) DO UPDATE SET
			xp = excluded.xp,
			streak = excluded.streak,
			last_active = excluded.last_active,
			badges = excluded.badges,
			updated_at = excluded.updated_at`,
		p.DogID, p.XP, p.Streak, p.LastActive, string(raw), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store: save progress: %w", err)
	}
	return nil
}
