package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingBaseURL is returned by New when no API base URL is configured
var ErrMissingBaseURL = errors.New("remote API base URL is not configured")

// Error is a non-2xx answer from the Secretaría API
type Error struct {
	Status  int
	Message string
	Body    json.RawMessage
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Request failed with status %d", e.Status)
}

// newError builds an Error from a response body, tolerating bodies that are
// not JSON or that lack a message field.
func newError(status int, body []byte) *Error {
	apiErr := &Error{Status: status}
	if len(body) == 0 {
		return apiErr
	}

	var parsed struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return apiErr
	}
	apiErr.Body = json.RawMessage(body)
	if parsed.Message != nil {
		apiErr.Message = strings.TrimSpace(*parsed.Message)
	}
	return apiErr
}

// MessageOr returns the server-provided message carried by err, or fallback
// when err is not an API error or the server sent no message.
func MessageOr(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusCode returns the HTTP status of an API error, or 0
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
