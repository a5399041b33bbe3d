// Package service provides business logic services for Brickshelf.
package service

import "errors"

// Common service errors.
var (
	// Registration and authentication errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid user name or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidPassword    = errors.New("invalid password: must be at least 8 characters")
	ErrInvalidUserName    = errors.New("invalid user name: must be 3-255 characters")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrHashingFailed      = errors.New("password hashing failed")

	// Session errors
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrSessionInvalid  = errors.New("session token is invalid")

	// Catalog errors
	ErrSetNotFound      = errors.New("set not found")
	ErrSetAlreadyExists = errors.New("set already exists")
	ErrThemeNotFound    = errors.New("theme not found")
	ErrInvalidSetInput  = errors.New("invalid set input")

	// General errors
	ErrPersistence   = errors.New("failed to persist data")
	ErrInternalError = errors.New("internal server error")
)
