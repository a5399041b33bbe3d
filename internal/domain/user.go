// Package domain contains the core business entities for Brickshelf.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the catalog and its user accounts.
package domain

import (
	"time"
)

// LoginRecord captures a single successful login event.
// Records are append-only and ordered: slice order is chronological order.
type LoginRecord struct {
	// Timestamp is when the authentication succeeded (UTC).
	Timestamp time.Time `json:"timestamp"`

	// ClientAgent is the free-form description of the client that logged in,
	// typically the HTTP User-Agent header.
	ClientAgent string `json:"client_agent"`
}

// User represents a registered user in the system.
// Users are keyed by their case-sensitive user name; both the user name and
// the email address are unique across all users, enforced by the store.
type User struct {
	// UserName is the unique, case-sensitive login name.
	UserName string `json:"user_name"`

	// Email is the unique email address for the user.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// It is never the plaintext secret and must only be checked through
	// bcrypt's verification routine, never by byte comparison.
	PasswordHash string `json:"-"`

	// LoginHistory is the append-only audit trail of successful logins.
	// It grows only when authentication succeeds; failed attempts never
	// touch it.
	LoginHistory []LoginRecord `json:"login_history"`

	// CreatedAt is the timestamp when the user registered.
	CreatedAt time.Time `json:"created_at"`
}

// NewUser creates a new User with an empty login history.
func NewUser(userName, email, passwordHash string) *User {
	return &User{
		UserName:     userName,
		Email:        email,
		PasswordHash: passwordHash,
		LoginHistory: []LoginRecord{},
		CreatedAt:    time.Now().UTC(),
	}
}

// LastLogin returns the most recent login record, or nil if the user has
// never logged in.
func (u *User) LastLogin() *LoginRecord {
	if len(u.LoginHistory) == 0 {
		return nil
	}
	return &u.LoginHistory[len(u.LoginHistory)-1]
}
