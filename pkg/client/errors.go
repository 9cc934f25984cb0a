package client

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password. The server does not say which.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthorized means the session is gone. The local session has
	// already been cleared when it is returned.
	ErrUnauthorized = errors.New("session expired, please sign in again")
	ErrForbidden    = errors.New("insufficient permissions")
	ErrRateLimited  = errors.New("too many attempts, please wait")
	// ErrUnavailable is any transport failure, timeout or server error.
	// Calls are never retried automatically.
	ErrUnavailable      = errors.New("service unavailable, please try again")
	ErrMalformedSession = errors.New("malformed session data")
)

// APIError carries the server's answer for a failed call. It unwraps to one
// of the sentinel errors above.
type APIError struct {
	Status  int
	Code    string
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.kind
}
