package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when no session exists for a user.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnauthorized is returned for identities outside the allow-list.
var ErrUnauthorized = errors.New("unauthorized")

// ErrIncomplete is returned when a submission is attempted with missing required fields.
var ErrIncomplete = errors.New("request is incomplete")

// ValidationError is a local parse or range failure on free-text input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// APIError is a structured error reported by the provisioning service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s: %s", e.Code, e.Message)
}

// TransportError is any submission failure without a structured API payload.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
