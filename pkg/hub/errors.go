package hub

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrInvalidVerb = errors.New("HTTP verb not allowed")
	ErrAuthFailed  = errors.New("hub authentication failed")
)

// APIError is returned when the hub answers with an error payload or a
// failing HTTP status code.
type APIError struct {
	StatusCode int    // HTTP status of the response
	Errors     string // raw "errors" field from the response body, if any
	RequestID  string // client-side request id for correlation
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Errors != "" {
		return fmt.Sprintf("hub error (status %d, request %s): %s", e.StatusCode, e.RequestID, e.Errors)
	}
	return fmt.Sprintf("hub error (status %d, request %s)", e.StatusCode, e.RequestID)
}
