package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-pawhealth/pkg/branding"
	"github.com/goliatone/go-pawhealth/pkg/fields"
)

type stubSource struct {
	decls []fields.Declaration
	err   error
}

func (s stubSource) OnboardingForm(context.Context) ([]fields.Declaration, error) {
	return s.decls, s.err
}

func newTestServer(t *testing.T, options ...Option) *httptest.Server {
	t.Helper()
	srv, err := New(options...)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var b strings.Builder
	_, err = io.Copy(&b, resp.Body)
	require.NoError(t, err)
	return resp, b.String()
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
}

func TestPreview_MergesServerForm(t *testing.T) {
	decls, err := fields.DecodeDeclarations([]byte(`[{"name":"coat","label":"Coat colour","type":"text"}]`))
	require.NoError(t, err)
	ts := newTestServer(t,
		WithFormSource(stubSource{decls: decls}),
		WithBrand(branding.FromMap(map[string]string{"bg_offwhite": "#fafafa"})),
	)

	resp, body := get(t, ts.URL+"/preview/onboarding?dog_id=dog-1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, `data-field="coat"`)
	assert.Contains(t, body, `id="onboarding-name"`)
	assert.Contains(t, body, `<input type="hidden" name="dog_id" value="dog-1">`)
	assert.Contains(t, body, `--brand-bg-offwhite: #fafafa;`)
}

func TestPreview_SourceFailure(t *testing.T) {
	ts := newTestServer(t, WithFormSource(stubSource{err: errors.New("backend down")}))
	resp, body := get(t, ts.URL+"/preview/onboarding")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "backend down")
}

func TestStyles(t *testing.T) {
	ts := newTestServer(t, WithBrand(branding.Settings{TextCharcoal: "123456"}))
	resp, body := get(t, ts.URL+"/styles.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/css; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "--brand-text-charcoal: #123456;")
}

func TestValidate(t *testing.T) {
	ts := newTestServer(t)

	post := func(body string) (*http.Response, validateResponse) {
		resp, err := http.Post(ts.URL+"/preview/validate", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		var out validateResponse
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return resp, out
	}

	resp, out := post(`{"name":"Rex","weight_kg":12.5,"form_data":{"symptoms":[],"fullFormFields":[]}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, out.Valid)

	resp, out = post(`{"name":"Rex","weight_kg":12.5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.False(t, out.Valid)
	assert.NotEmpty(t, out.Issues)

	resp, _ = post(`{`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	srv, err := New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
