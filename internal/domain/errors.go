package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMethodNotAllowed is returned for any HTTP verb other than POST.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrMissingAPIKey is returned when the upstream API key is not configured.
	ErrMissingAPIKey = errors.New("upstream API key is not configured")
)

// ValidationError describes a malformed or incomplete chat payload.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return e.Problems[0]
	}
	return strings.Join(e.Problems, "; ")
}

// NewValidationError builds a ValidationError from a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Problems: []string{fmt.Sprintf(format, args...)}}
}

// UpstreamError is a non-2xx answer from the generative API.
// StatusCode is forwarded to the caller unchanged.
type UpstreamError struct {
	StatusCode int

	// Details is the upstream error payload: parsed JSON when the body was JSON,
	// otherwise the raw text. May be nil.
	Details any
}

func (e *UpstreamError) Error() string {
	if e.Details == nil {
		return fmt.Sprintf("upstream API error [%d]", e.StatusCode)
	}
	return fmt.Sprintf("upstream API error [%d]: %v", e.StatusCode, e.Details)
}

// NewUpstreamError builds an UpstreamError from a raw response body.
// JSON bodies are kept structured so they can be relayed as-is.
func NewUpstreamError(statusCode int, body []byte) *UpstreamError {
	ue := &UpstreamError{StatusCode: statusCode}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ue
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err == nil {
		ue.Details = parsed
	} else {
		ue.Details = trimmed
	}
	return ue
}

// IsValidationError checks if an error is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsUpstreamError extracts an UpstreamError from err, if present.
func AsUpstreamError(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
