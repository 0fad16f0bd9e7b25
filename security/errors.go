package security

import (
	"errors"
	"fmt"
	"log"
)

// ValidationError reports malformed or missing input. Its message is safe to
// surface because it is written for users and carries no internal detail.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthorizationError reports a caller that is not authenticated or not an
// admin. The reason stays server-side; callers surface a generic message.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "not authorized: " + e.Reason
}

// NotFoundError reports an absent target resource
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// StorageError wraps a persistence failure
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// UpstreamError wraps a collaborator (firewall, geolocation) failure
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failure: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// SanitizedError is what a caller may see: a fixed public message plus an
// internal code operators can correlate with the server log.
type SanitizedError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Fixed public-facing vocabulary. Nothing outside this list ever reaches a
// caller from a failure path.
const (
	msgNotAuthorized = "You are not authorized to perform this action"
	msgUnavailable   = "A required service is temporarily unavailable. Please try again later."
	msgUnexpected    = "An unexpected error occurred. Please try again later."
)

// Sanitize maps any error to the fixed public vocabulary. Storage detail,
// stack traces and query fragments never pass through; the full error is
// written to the server log keyed by the internal code.
func Sanitize(err error, internalCode string) SanitizedError {
	log.Printf("[%s] %v", internalCode, err)

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return SanitizedError{Message: validationErr.Message, Code: internalCode}
	}

	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return SanitizedError{Message: notFoundErr.Resource + " not found", Code: internalCode}
	}

	var authErr *AuthorizationError
	if errors.As(err, &authErr) {
		return SanitizedError{Message: msgNotAuthorized, Code: internalCode}
	}

	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return SanitizedError{Message: msgUnavailable, Code: internalCode}
	}

	return SanitizedError{Message: msgUnexpected, Code: internalCode}
}
