// Package domain contains the core business entities for Brickshelf.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// User Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same user name or email
	// exists. The store enforces this; a colliding insert fails rather than
	// silently overwriting.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials indicates the password did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPasswordMismatch indicates the password confirmation did not match
	// the password during registration.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrInvalidUserName indicates the user name is empty or malformed.
	ErrInvalidUserName = errors.New("user name must not be empty")

	// ===========================================
	// Catalog Errors
	// ===========================================

	// ErrSetNotFound indicates the requested set does not exist.
	ErrSetNotFound = errors.New("set not found")

	// ErrSetAlreadyExists indicates a set with the same number exists.
	ErrSetAlreadyExists = errors.New("set already exists")

	// ErrThemeNotFound indicates the requested theme does not exist.
	ErrThemeNotFound = errors.New("theme not found")

	// ===========================================
	// Session Errors
	// ===========================================

	// ErrSessionNotFound indicates the session is missing or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionInvalid indicates the session token failed verification.
	ErrSessionInvalid = errors.New("session token is invalid")
)

// DomainError wraps a domain error with additional context.
type DomainError struct {
	// Err is the underlying domain error.
	Err error

	// Message provides additional context.
	Message string

	// Resource identifies the affected resource (e.g. user name, set number).
	Resource string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err.Error(), e.Message, e.Resource)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with context.
func NewDomainError(err error, message, resource string) *DomainError {
	return &DomainError{
		Err:      err,
		Message:  message,
		Resource: resource,
	}
}
