// Package client talks to the pet-health REST backend. Authenticated calls
// attach a bearer token from a TokenSource; public calls do not.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "go-pawhealth"
	maxResponseBytes = 8 << 20
)

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// Token implements TokenSource.
func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken returns a TokenSource that always yields token.
func StaticToken(token string) TokenSource {
	return TokenFunc(func(context.Context) (string, error) { return token, nil })
}

// Client is a JSON client for the backend API. It is safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    TokenSource
	logger    *zap.Logger
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource sets the bearer token source for authenticated requests.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithLogger attaches a logger. Requests are logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(agent); trimmed != "" {
			c.userAgent = trimmed
		}
	}
}

// New constructs a Client for the API rooted at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("client: base URL is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("client: parse base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("client: base URL %q must be absolute", baseURL)
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")

	c := &Client{
		baseURL:   parsed,
		http:      &http.Client{Timeout: defaultTimeout},
		logger:    zap.NewNop(),
		userAgent: defaultUserAgent,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// WithTokens returns a shallow copy of c that uses tokens for authenticated
// requests.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	clone := *c
	clone.tokens = tokens
	return &clone
}

// Request describes a single API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Public requests are sent without a bearer token.
	Public bool
}

type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// Do sends req and decodes a successful JSON response into out when out is
// non-nil.
//
// Transport failures match ErrTransport. Non-2xx responses and 2xx responses
// carrying {"success": false} are returned as *APIError.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if ctx == nil {
		return errors.New("client: context is required")
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := c.newRequest(ctx, method, req)
	if err != nil {
		return err
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", req.Path),
			zap.Error(err),
		)
		return &TransportError{Method: method, Path: req.Path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Method: method, Path: req.Path, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, body)
	}
	if apiErr := businessFailure(resp.StatusCode, body); apiErr != nil {
		return apiErr
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, req.Path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method string, req Request) (*http.Request, error) {
	target := *c.baseURL
	target.Path = c.baseURL.Path + "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("client: encode %s %s: %w", method, req.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if !req.Public {
		if c.tokens == nil {
			return nil, ErrUnauthenticated
		}
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("client: token: %w", err)
		}
		if strings.TrimSpace(token) == "" {
			return nil, ErrUnauthenticated
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

func businessFailure(status int, body []byte) *APIError {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil
	}
	if env.Success == nil || *env.Success {
		return nil
	}
	message := strings.TrimSpace(env.Message)
	if message == "" {
		message = "request was not successful"
	}
	return &APIError{Status: status, Message: message, business: true}
}
