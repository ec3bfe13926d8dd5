package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized matches any 401 response. The session has already been
	// invalidated by the time a caller sees it.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound matches any 404 response.
	ErrNotFound = errors.New("not found")
)

// StatusError is returned for every non-2xx response. Detail holds the
// service's "detail" field when the body carries one.
type StatusError struct {
	StatusCode int
	Detail     string
	Body       []byte
}

func newStatusError(code int, body []byte) *StatusError {
	return &StatusError{StatusCode: code, Detail: parseDetail(body), Body: body}
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("remote service: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Detail)
	}
	return fmt.Sprintf("remote service: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// StatusCode reports the HTTP status carried by err, or 0 when err did not
// come from a response.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// parseDetail understands {"detail": "text"} and {"detail": [...]} bodies.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(payload.Detail))
}
