// Package common defines shared constants and sentinel errors used across
// the guest gallery server, its repositories and the admin console.
// Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Upload pipeline taxonomy.
	ErrValidation   = errors.New("validation error")
	ErrStorageWrite = errors.New("storage write error")
	ErrDatabase     = errors.New("database error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Site gate errors.
	ErrInvalidPassword     = errors.New("invalid password")
	ErrGateNotConfigured   = errors.New("site password is not configured")
	ErrInvalidPasswordHash = errors.New("invalid password hash")
	ErrUnsupportedReaction = errors.New("unsupported reaction")
)

// ValidationError carries a user-facing reason for rejecting a submission.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError returns a *ValidationError with the given reason.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}
