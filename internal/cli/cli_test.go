package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-pawhealth/pkg/renderers/tui"
)

// scriptedDriver answers prompts by their message.
type scriptedDriver struct {
	inputs   map[string][]string
	selects  map[string]int
	multi    map[string][]int
	confirms map[string]bool
}

func (d *scriptedDriver) next(message string) (string, error) {
	answers := d.inputs[message]
	if len(answers) == 0 {
		return "", fmt.Errorf("no answer scripted for %q", message)
	}
	d.inputs[message] = answers[1:]
	return answers[0], nil
}

func (d *scriptedDriver) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	return d.next(cfg.Message)
}

func (d *scriptedDriver) Password(_ context.Context, cfg tui.InputConfig) (string, error) {
	return d.next(cfg.Message)
}

func (d *scriptedDriver) TextArea(_ context.Context, cfg tui.TextAreaConfig) (string, error) {
	return d.next(cfg.Message)
}

func (d *scriptedDriver) Confirm(_ context.Context, cfg tui.ConfirmConfig) (bool, error) {
	v, ok := d.confirms[cfg.Message]
	if !ok {
		return false, fmt.Errorf("no confirm scripted for %q", cfg.Message)
	}
	return v, nil
}

func (d *scriptedDriver) Select(_ context.Context, cfg tui.SelectConfig) (int, error) {
	v, ok := d.selects[cfg.Message]
	if !ok {
		return -1, fmt.Errorf("no select scripted for %q", cfg.Message)
	}
	return v, nil
}

func (d *scriptedDriver) MultiSelect(_ context.Context, cfg tui.SelectConfig) ([]int, error) {
	v, ok := d.multi[cfg.Message]
	if !ok {
		return nil, fmt.Errorf("no multiselect scripted for %q", cfg.Message)
	}
	return v, nil
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

type backend struct {
	mu      sync.Mutex
	created []map[string]any
}

func (b *backend) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/login":
			_, _ = io.WriteString(w, `{"access_token":"tok-1","token_type":"bearer"}`)
		case "/account/me":
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"detail":"Not authenticated"}`)
				return
			}
			_, _ = io.WriteString(w, `{"id":"u1","email":"ada@example.test","name":"Ada","role":"member"}`)
		case "/get-onboarding-form":
			_, _ = io.WriteString(w, `{"success":true,"form":[{"name":"coat","label":"Coat","type":"text"}]}`)
		case "/dogs/create-dog":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			b.mu.Lock()
			b.created = append(b.created, body)
			b.mu.Unlock()
			_, _ = io.WriteString(w, `{"success":true,"dog":{"id":"dog-9","name":"Rex"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Not Found"}`)
		}
	}
}

type harness struct {
	t       *testing.T
	cfgPath string
	backend *backend
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(b.handler(t))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`api:
  base_url: %s
store:
  path: %s
keyring:
  disabled: true
logging:
  level: error
brand:
  bg_offwhite: "#101010"
`, srv.URL, filepath.Join(dir, "state.db"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return &harness{t: t, cfgPath: cfgPath, backend: b}
}

func (h *harness) run(driver tui.PromptDriver, args ...string) (string, string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	options := []Option{WithOutput(&out, &errOut)}
	if driver != nil {
		options = append(options, WithPromptDriver(driver))
	}
	cmd := NewRootCmd(options...)
	cmd.SetArgs(append([]string{"--config", h.cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (h *harness) login() {
	h.t.Helper()
	driver := &scriptedDriver{inputs: map[string][]string{"Password": {"secret"}}}
	out, _, err := h.run(driver, "login", "--email", "ada@example.test")
	require.NoError(h.t, err)
	require.Contains(h.t, out, "[success] Signed in as Ada")
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, _, err := h.run(nil, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, `"email": "ada@example.test"`)

	out, _, err = h.run(nil, "logout")
	require.NoError(t, err)
	assert.Equal(t, "Signed out\n", out)

	out, _, err = h.run(nil, "logout")
	require.NoError(t, err)
	assert.Equal(t, "Not signed in\n", out)

	_, _, err = h.run(nil, "whoami")
	assert.Error(t, err)
}

func intakeDriver() *scriptedDriver {
	return &scriptedDriver{
		inputs: map[string][]string{
			"Dog's name":     {"Rex"},
			"Breed":          {"Beagle"},
			"Age (years)":    {"four", "4"},
			"Weight (kg)":    {"12.5"},
			"Behavior notes": {""},
			"Coat":           {"brindle"},
		},
		selects: map[string]int{"Stool type": 0},
		multi:   map[string][]int{"Current symptoms": {4}},
	}
}

func TestIntake_DryRunAndSubmit(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, _, err := h.run(intakeDriver(), "intake", "--dry-run")
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "Rex", payload["name"])
	assert.Equal(t, 12.5, payload["weight_kg"])
	assert.Empty(t, h.backend.created)

	out, _, err = h.run(intakeDriver(), "intake")
	require.NoError(t, err)
	assert.Contains(t, out, "[success] Saved Rex")
	require.Len(t, h.backend.created, 1)
	formData, ok := h.backend.created[0]["form_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"gas"}, formData["symptoms"])
}

func TestIntake_RequiresLogin(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run(intakeDriver(), "intake")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "pawhealth login"), err.Error())
}

func TestBuilderExportOffline(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(nil, "builder", "export", "--offline")
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.NotEmpty(t, list)
	for _, field := range list {
		assert.NotEmpty(t, field["id"])
	}

	out, _, err = h.run(nil, "builder", "export", "--offline", "--openapi")
	require.NoError(t, err)
	assert.Contains(t, out, `"openapi": "3.0.3"`)
}

func TestBrandCSS(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run(nil, "brand", "css")
	require.NoError(t, err)
	assert.Contains(t, out, "--brand-bg-offwhite: #101010;")
}

func TestBrandSave_RequiresAdmin(t *testing.T) {
	h := newHarness(t)
	h.login()
	_, _, err := h.run(nil, "brand", "save")
	require.Error(t, err)
}

func TestProtocolNormalize(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "protocol.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"supplements":[{"title":"Fish oil"}],"custom_sections":[]}`), 0o600))

	out, _, err := h.run(nil, "protocol", "normalize", path)
	require.NoError(t, err)
	assert.Contains(t, out, "supplements:")
	assert.Contains(t, out, "title: Fish oil")
	assert.Contains(t, out, "daily_meal_plan:")

	_, _, err = h.run(nil, "protocol", "normalize", filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}

func TestXPRecordAndShow(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(nil, "xp", "record", "dog-1", "walk", "--at", "2026-01-02T10:00:00Z")
	require.NoError(t, err)
	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Greater(t, result["Gained"], 0.0)

	out, _, err = h.run(nil, "xp", "show", "dog-1")
	require.NoError(t, err)
	assert.Contains(t, out, `"Streak": 1`)
}

func TestPreviewOffline(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(nil, "preview", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, `<form id="onboarding"`)
	assert.Contains(t, out, "--brand-bg-offwhite: #101010;")

	_, _, err = h.run(nil, "preview", "--offline", "--renderer", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `renderer "pdf" not found`)
}

func TestBuilderImport_RequiresAdmin(t *testing.T) {
	h := newHarness(t)
	h.login()
	path := filepath.Join(t.TempDir(), "form.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"f1","name":"coat","type":"text"}]`), 0o600))

	_, _, err := h.run(nil, "builder", "import", path)
	require.Error(t, err)

	_, _, err = h.run(nil, "builder", "import", filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}
