package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-pawhealth/pkg/fields"
)

// Dog is a dog record.
type Dog struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name"`
	Breed       string                     `json:"breed,omitempty"`
	Sex         string                     `json:"sex,omitempty"`
	DateOfBirth string                     `json:"date_of_birth,omitempty"`
	WeightKg    float64                    `json:"weight_kg,omitempty"`
	Notes       string                     `json:"notes,omitempty"`
	FormData    map[string]json.RawMessage `json:"form_data,omitempty"`
	Protocol    json.RawMessage            `json:"protocol,omitempty"`
	Overview    json.RawMessage            `json:"overview,omitempty"`
}

// FullFormFields decodes the field list saved with the dog's last intake
// submission. Missing lists decode as nil.
func (d Dog) FullFormFields() (fields.List, error) {
	raw, ok := d.FormData["fullFormFields"]
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var list fields.List
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("client: decode fullFormFields: %w", err)
	}
	return list, nil
}

// DogInput is the body of dog create and update requests.
type DogInput struct {
	Name        string   `json:"name,omitempty"`
	Breed       string   `json:"breed,omitempty"`
	Sex         string   `json:"sex,omitempty"`
	DateOfBirth string   `json:"date_of_birth,omitempty"`
	Age         float64  `json:"age"`
	WeightKg    float64  `json:"weight_kg"`
	Notes       string   `json:"notes"`
	StoolType   string   `json:"stoolType,omitempty"`
	Symptoms    []string `json:"symptoms"`
	FormData    FormData `json:"form_data"`
}

// FormData is the free-form section of a dog record written by the intake
// form.
type FormData struct {
	Age            float64     `json:"age"`
	Weight         float64     `json:"weight"`
	StoolType      string      `json:"stoolType"`
	Symptoms       []string    `json:"symptoms"`
	BehaviorNotes  string      `json:"behaviorNotes"`
	FullFormFields fields.List `json:"fullFormFields"`
}

type dogResponse struct {
	Dog Dog `json:"dog"`
}

func dogPath(prefix, id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", errors.New("client: dog id is required")
	}
	return prefix + url.PathEscape(trimmed), nil
}

// GetDog fetches a dog owned by the current user.
func (c *Client) GetDog(ctx context.Context, id string) (Dog, error) {
	path, err := dogPath("/dogs/get/", id)
	if err != nil {
		return Dog{}, err
	}
	var resp dogResponse
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: path}, &resp); err != nil {
		return Dog{}, err
	}
	return resp.Dog, nil
}

// ListDogs lists the current user's dogs.
func (c *Client) ListDogs(ctx context.Context) ([]Dog, error) {
	var resp struct {
		Dogs []Dog `json:"dogs"`
	}
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/dogs/get-dogs"}, &resp); err != nil {
		return nil, err
	}
	return resp.Dogs, nil
}

// CreateDog creates a dog from an intake payload.
func (c *Client) CreateDog(ctx context.Context, input DogInput) (Dog, error) {
	var resp dogResponse
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/dogs/create-dog", Body: input}, &resp)
	if err != nil {
		return Dog{}, err
	}
	return resp.Dog, nil
}

// UpdateDog replaces a dog's intake data. The backend keeps stored top level
// values for omitted attributes.
func (c *Client) UpdateDog(ctx context.Context, id string, input DogInput) (Dog, error) {
	path, err := dogPath("/dogs/update/", id)
	if err != nil {
		return Dog{}, err
	}
	var resp dogResponse
	if err := c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: input}, &resp); err != nil {
		return Dog{}, err
	}
	return resp.Dog, nil
}

// UpdateProtocol writes a full protocol document to the dog record.
func (c *Client) UpdateProtocol(ctx context.Context, id string, protocol any) error {
	path, err := dogPath("/dogs/update/", id)
	if err != nil {
		return err
	}
	return c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   path,
		Body:   map[string]any{"protocol": protocol},
	}, nil)
}

// DeleteDog removes a dog.
func (c *Client) DeleteDog(ctx context.Context, id string) error {
	path, err := dogPath("/dogs/delete/", id)
	if err != nil {
		return err
	}
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}
