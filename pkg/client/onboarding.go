package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/goliatone/go-pawhealth/pkg/fields"
)

// OnboardingForm fetches the administrator configured onboarding form. A
// backend without a saved form yields no declarations.
func (c *Client) OnboardingForm(ctx context.Context) ([]fields.Declaration, error) {
	raw, err := c.OnboardingFormJSON(ctx)
	if err != nil {
		return nil, err
	}
	return fields.DecodeDeclarations(raw)
}

// OnboardingFormJSON fetches the onboarding form as stored, including
// builder only attributes such as field ids.
func (c *Client) OnboardingFormJSON(ctx context.Context) (json.RawMessage, error) {
	var resp struct {
		Form json.RawMessage `json:"form"`
	}
	err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/get-onboarding-form",
		Public: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Form, nil
}

// UpdateOnboardingForm replaces the onboarding form with form, which is sent
// verbatim as json_data.
func (c *Client) UpdateOnboardingForm(ctx context.Context, form any) error {
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/update-onboarding-form",
		Body:   map[string]any{"json_data": form},
	}, nil)
}
