package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// OAuth flow errors.

	// ErrMissingRedirectURI indicates the redirect URI was empty after trimming.
	ErrMissingRedirectURI = errors.New("redirect uri is required")

	// ErrBackendNotConfigured indicates no admin backend base URL is set.
	ErrBackendNotConfigured = errors.New("admin backend not configured")
)

// RemoteError is returned when the admin backend answers with a failure.
// Detail holds the backend's human-readable "detail" field when present.
type RemoteError struct {
	StatusCode int
	Detail     string
	Body       []byte
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// ErrorDetail returns the backend-provided detail message carried by err,
// or an empty string when err is not a RemoteError or has no detail.
func ErrorDetail(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Detail
	}
	return ""
}
