package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// UserTotals is the totals block of the admin users listing.
type UserTotals struct {
	TotalUsers           int            `json:"total_users"`
	FilteredUsers        int            `json:"filtered_users"`
	ActiveSubscriptions  int            `json:"active_subscriptions"`
	ByPlan               map[string]int `json:"by_plan"`
	BySubscriptionStatus map[string]int `json:"by_subscription_status"`
}

// Totals decodes the totals block carried by a users page.
func Totals(page Page[User]) (UserTotals, error) {
	var totals UserTotals
	raw, ok := page.Extra["totals"]
	if !ok {
		return totals, nil
	}
	err := json.Unmarshal(raw, &totals)
	return totals, err
}

// ListUsers lists accounts. Filters may carry status, plan and order_by.
func (c *Client) ListUsers(ctx context.Context, q ListQuery) (Page[User], error) {
	var page Page[User]
	err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/admin/users",
		Query:  q.values("per_page", "q"),
	}, &page)
	return page, err
}

// UserDogs lists the dogs owned by an account.
func (c *Client) UserDogs(ctx context.Context, userID string) ([]Dog, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("client: user id is required")
	}
	var resp struct {
		Dogs []Dog `json:"dogs"`
	}
	path := "/admin/users/" + url.PathEscape(userID) + "/dogs"
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: path}, &resp); err != nil {
		return nil, err
	}
	return resp.Dogs, nil
}

// Feedback is a piece of user feedback.
type Feedback struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Email     string         `json:"email,omitempty"`
	Message   string         `json:"message"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt string         `json:"created_at,omitempty"`
}

// MinFeedbackLength is the shortest accepted feedback message, in characters.
const MinFeedbackLength = 10

// ErrFeedbackTooShort is returned before sending feedback below
// MinFeedbackLength characters.
var ErrFeedbackTooShort = errors.New("client: feedback message must be at least 10 characters")

// SubmitFeedback stores feedback and returns its id.
func (c *Client) SubmitFeedback(ctx context.Context, fb Feedback) (string, error) {
	if utf8.RuneCountInString(strings.TrimSpace(fb.Message)) < MinFeedbackLength {
		return "", ErrFeedbackTooShort
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/feedback", Body: fb}, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// ListFeedback lists feedback for administrators.
func (c *Client) ListFeedback(ctx context.Context, q ListQuery) (Page[Feedback], error) {
	var page Page[Feedback]
	err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/admin/feedback",
		Query:  q.values("page_size", "q"),
	}, &page)
	return page, err
}

// Submission is an onboarding submission.
type Submission struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id,omitempty"`
	DogID     string          `json:"dog_id,omitempty"`
	Symptoms  json.RawMessage `json:"symptoms,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
}

// LatestSubmissions lists the most recent onboarding submissions.
func (c *Client) LatestSubmissions(ctx context.Context, limit int) ([]Submission, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var page Page[Submission]
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/submissions/latest", Query: query}, &page)
	return page.Items, err
}

// SubmissionFilter narrows FindSubmissions.
type SubmissionFilter struct {
	SubmissionID string
	UserID       string
	DogID        string
}

// FindSubmissions lists submissions matching filter.
func (c *Client) FindSubmissions(ctx context.Context, filter SubmissionFilter) ([]Submission, error) {
	query := url.Values{}
	for key, value := range map[string]string{
		"submission_id": filter.SubmissionID,
		"user_id":       filter.UserID,
		"dog_id":        filter.DogID,
	} {
		if strings.TrimSpace(value) != "" {
			query.Set(key, value)
		}
	}
	var page Page[Submission]
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/submissions/", Query: query}, &page)
	return page.Items, err
}

// Settings is the admin settings record.
type Settings struct {
	BrandSettings map[string]string `json:"brand_settings,omitempty"`
	Preferences   map[string]any    `json:"preferences,omitempty"`
	Activities    json.RawMessage   `json:"activities,omitempty"`
	Tip           string            `json:"tip,omitempty"`
}

// AdminSettings fetches the admin settings record.
func (c *Client) AdminSettings(ctx context.Context) (Settings, error) {
	var settings Settings
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/admin/settings"}, &settings)
	return settings, err
}

// UpdateAdminSettings applies a partial settings update.
func (c *Client) UpdateAdminSettings(ctx context.Context, update Settings) (Settings, error) {
	var settings Settings
	err := c.Do(ctx, Request{Method: http.MethodPut, Path: "/admin/settings", Body: update}, &settings)
	return settings, err
}

// SavedAssets reports where the backend published brand assets.
type SavedAssets struct {
	CSSURL  string `json:"css_url"`
	LogoURL string `json:"logo_url,omitempty"`
}

// SaveBrandSettings asks the backend to publish a stylesheet for colours.
func (c *Client) SaveBrandSettings(ctx context.Context, colours map[string]string) (SavedAssets, error) {
	var assets SavedAssets
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/admin/save-settings", Body: colours}, &assets)
	return assets, err
}
