// internal/apiclient/errors.go
package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types the CLI can branch on. Every network-boundary failure is
// normalized into one of these before it reaches user-facing code.
const (
	TypeValidation = "validation"
	TypeAuth       = "auth"
	TypeRateLimit  = "rate_limit"
	TypeServer     = "server"
	TypeNetwork    = "network"
)

// Error is the normalized {type, message, details} failure shape.
type Error struct {
	Type       string
	Message    string
	StatusCode int
	Details    map[string]any
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Retryable reports whether the failure is worth another attempt. Validation
// and auth failures are permanent by definition.
func (e *Error) Retryable() bool {
	switch e.Type {
	case TypeRateLimit, TypeServer, TypeNetwork:
		return true
	}
	return false
}

// IsRetryable is the retry predicate used for API calls.
func IsRetryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	// Anything not normalized is a transport-level surprise; retry it.
	return true
}

func typeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return TypeAuth
	case status == http.StatusTooManyRequests:
		return TypeRateLimit
	case status >= 500:
		return TypeServer
	default:
		return TypeValidation
	}
}

// Remediation returns the user-facing suggestion for an error type. Raw
// transport messages never reach the user for retryable failures.
func Remediation(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return "An unexpected error occurred. Please try again."
	}
	switch apiErr.Type {
	case TypeValidation:
		return apiErr.Message
	case TypeAuth:
		return "Authentication failed. Check the stored API credentials and try again."
	case TypeRateLimit:
		return "Rate limit exceeded. Wait a little before retrying, or switch to a cheaper model."
	case TypeServer:
		return "The server had a problem handling the request. Please try again later."
	default:
		return "Could not reach the server. Check the connection and the configured API base URL."
	}
}
