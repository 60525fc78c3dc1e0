// Package gamify awards experience points, daily streaks and badges for dog
// care activities.
package gamify

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-pawhealth/internal/store"
)

// Activity is a kind of recorded care activity.
type Activity string

const (
	Walk       Activity = "walk"
	Meal       Activity = "meal"
	Training   Activity = "training"
	VetVisit   Activity = "vet_visit"
	Medication Activity = "medication"
	Play       Activity = "play"
	Other      Activity = "other"
)

var activityXP = map[Activity]int{
	Walk:       10,
	Meal:       5,
	Training:   15,
	VetVisit:   25,
	Medication: 5,
	Play:       10,
	Other:      2,
}

// Activities returns the recognised activities.
func Activities() []Activity {
	return []Activity{Walk, Meal, Training, VetVisit, Medication, Play, Other}
}

// XP returns the points awarded for an activity.
func XP(a Activity) int { return activityXP[a] }

// ParseActivity resolves a name to an activity. Unknown names map to Other.
func ParseActivity(raw string) Activity {
	a := Activity(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := activityXP[a]; ok {
		return a
	}
	return Other
}

// Badge ids.
const (
	BadgeFirstSteps = "first-steps"
	BadgeStreak7    = "streak-7"
	BadgeStreak30   = "streak-30"
	BadgeXP100      = "xp-100"
	BadgeXP500      = "xp-500"
)

type badgeRule struct {
	id    string
	match func(store.Progress) bool
}

var badgeRules = []badgeRule{
	{BadgeFirstSteps, func(p store.Progress) bool { return p.XP > 0 }},
	{BadgeStreak7, func(p store.Progress) bool { return p.Streak >= 7 }},
	{BadgeStreak30, func(p store.Progress) bool { return p.Streak >= 30 }},
	{BadgeXP100, func(p store.Progress) bool { return p.XP >= 100 }},
	{BadgeXP500, func(p store.Progress) bool { return p.XP >= 500 }},
}

// ProgressStore loads and saves progress.
type ProgressStore interface {
	Progress(ctx context.Context, dogID string) (store.Progress, error)
	SaveProgress(ctx context.Context, p store.Progress) error
}

// Result describes the effect of one recorded activity.
type Result struct {
	Progress  store.Progress
	Gained    int
	NewBadges []string
}

// Tracker records activities against a ProgressStore.
type Tracker struct {
	store    ProgressStore
	location *time.Location
	logger   *zap.Logger
}

// NewTracker returns a tracker. Days are counted in loc (UTC when nil).
func NewTracker(ps ProgressStore, loc *time.Location, logger *zap.Logger) *Tracker {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: ps, location: loc, logger: logger}
}

// Record adds the XP of activity at the given time, updates the streak and
// awards newly earned badges.
func (t *Tracker) Record(ctx context.Context, dogID string, activity Activity, at time.Time) (Result, error) {
	if strings.TrimSpace(dogID) == "" {
		return Result{}, errors.New("gamify: dog id is required")
	}
	p, err := t.store.Progress(ctx, dogID)
	if err != nil {
		return Result{}, fmt.Errorf("gamify: load: %w", err)
	}

	gained := XP(ParseActivity(string(activity)))
	p.XP += gained
	day := at.In(t.location).Format(time.DateOnly)
	p.Streak = NextStreak(p.LastActive, p.Streak, day)
	if p.LastActive == "" || day > p.LastActive {
		p.LastActive = day
	}

	var awarded []string
	for _, rule := range badgeRules {
		if rule.match(p) && !slices.Contains(p.Badges, rule.id) {
			p.Badges = append(p.Badges, rule.id)
			awarded = append(awarded, rule.id)
		}
	}

	if err := t.store.SaveProgress(ctx, p); err != nil {
		return Result{}, fmt.Errorf("gamify: save: %w", err)
	}
	if len(awarded) > 0 {
		t.logger.Info("badges awarded", zap.String("dog_id", dogID), zap.Strings("badges", awarded))
	}
	return Result{Progress: p, Gained: gained, NewBadges: awarded}, nil
}

// NextStreak returns the streak after activity on day, given the last active
// day and current streak. Activity on the same day keeps the streak, on the
// next day extends it and after a gap restarts it at 1. Days are
// YYYY-MM-DD strings.
func NextStreak(lastActive string, streak int, day string) int {
	if lastActive == "" || streak <= 0 {
		return 1
	}
	last, err := time.Parse(time.DateOnly, lastActive)
	if err != nil {
		return 1
	}
	current, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return streak
	}
	switch diff := int(current.Sub(last).Hours() / 24); {
	case diff <= 0:
		return streak
	case diff == 1:
		return streak + 1
	default:
		return 1
	}
}
