package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrTransport matches failures where no HTTP response was received.
	ErrTransport = errors.New("client: transport failure")
	// ErrBusiness matches 2xx responses reporting {"success": false}.
	ErrBusiness = errors.New("client: request rejected")
	// ErrUnauthenticated is returned when an authenticated call has no token,
	// and matches 401 responses.
	ErrUnauthenticated = errors.New("client: not authenticated")
	// ErrForbidden matches 403 responses.
	ErrForbidden = errors.New("client: forbidden")
	// ErrNotFound matches 404 responses.
	ErrNotFound = errors.New("client: not found")
	// ErrConflict matches 409 responses.
	ErrConflict = errors.New("client: conflict")
)

// TransportError wraps a failure to reach the backend.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("client: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// APIError is a failure reported by the backend. Message holds the server
// message verbatim. Fields maps request locations (for example "body.name")
// to validation messages when the server returned structured details.
type APIError struct {
	Status  int
	Message string
	Fields  map[string][]string

	business bool
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: status %d", e.Status)
	}
	return fmt.Sprintf("client: status %d: %s", e.Status, e.Message)
}

// Is lets errors.Is match the status sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrBusiness:
		return e.business
	case ErrUnauthenticated:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	default:
		return false
	}
}

// Message extracts a user facing message from err: the server message for
// API errors, a generic connectivity message for transport failures and the
// error text otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrTransport) {
		return "Could not reach the server. Check your connection and try again."
	}
	return err.Error()
}

type validationDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// decodeAPIError understands {"detail": "..."}, {"detail": [{loc, msg}]} and
// {"message": "..."} bodies.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	trimmed := bytes.TrimSpace(body)

	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if len(trimmed) > 0 && trimmed[0] == '{' && json.Unmarshal(trimmed, &payload) == nil {
		apiErr.Message = strings.TrimSpace(payload.Message)

		var detail string
		var details []validationDetail
		switch {
		case json.Unmarshal(payload.Detail, &detail) == nil:
			apiErr.Message = strings.TrimSpace(detail)
		case json.Unmarshal(payload.Detail, &details) == nil && len(details) > 0:
			apiErr.Fields = make(map[string][]string, len(details))
			messages := make([]string, 0, len(details))
			for _, d := range details {
				path := joinLoc(d.Loc)
				apiErr.Fields[path] = append(apiErr.Fields[path], d.Msg)
				messages = append(messages, d.Msg)
			}
			if apiErr.Message == "" {
				apiErr.Message = strings.Join(messages, "; ")
			}
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func joinLoc(loc []any) string {
	parts := make([]string, 0, len(loc))
	for _, segment := range loc {
		parts = append(parts, fmt.Sprint(segment))
	}
	return strings.Join(parts, ".")
}
