// Package repository defines data access interfaces for Brickshelf.
// These interfaces abstract store operations, allowing for different
// implementations (PostgreSQL or SQLite for the catalog, bbolt for users,
// in-memory for testing) while keeping the service layer clean.
package repository

import (
	"context"

	"github.com/brickshelf/brickshelf/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
//
// Implementations must enforce uniqueness of both the user name and the email
// atomically: when two concurrent Create calls collide, exactly one succeeds
// and the others observe domain.ErrUserAlreadyExists. AppendLoginRecord must
// be atomic per user so that concurrent successful logins never lose a
// history entry.
type UserRepository interface {
	// Create persists a new user. Fails with domain.ErrUserAlreadyExists
	// when the user name or email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByUserName retrieves a user by exact, case-sensitive user name.
	// Returns domain.ErrUserNotFound when absent.
	GetByUserName(ctx context.Context, userName string) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// AppendLoginRecord atomically appends a login record to the user's
	// history and returns the updated user.
	AppendLoginRecord(ctx context.Context, userName string, rec domain.LoginRecord) (*domain.User, error)

	// ExistsByUserName checks if a user with the given user name exists.
	ExistsByUserName(ctx context.Context, userName string) (bool, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Count returns the total number of registered users.
	Count(ctx context.Context) (int64, error)

	// List returns all users ordered by user name. Used by the admin CLI.
	List(ctx context.Context) ([]*domain.User, error)
}

// =============================================================================
// Catalog Repositories
// =============================================================================

// SetRepository defines the interface for set data access.
type SetRepository interface {
	// Create inserts a new set. Fails with domain.ErrSetAlreadyExists when
	// the set number is taken.
	Create(ctx context.Context, set *domain.Set) error

	// GetByNum retrieves a set (with its theme name joined) by set number.
	// Returns domain.ErrSetNotFound when absent.
	GetByNum(ctx context.Context, num string) (*domain.Set, error)

	// List returns all sets with theme names joined, ordered by set number.
	List(ctx context.Context) ([]*domain.Set, error)

	// ListByTheme returns sets whose theme name contains the given fragment,
	// matched case-insensitively.
	ListByTheme(ctx context.Context, theme string) ([]*domain.Set, error)

	// Update updates an existing set identified by set.Num.
	// Returns domain.ErrSetNotFound when absent.
	Update(ctx context.Context, set *domain.Set) error

	// Delete deletes a set by number. Returns domain.ErrSetNotFound when
	// absent.
	Delete(ctx context.Context, num string) error
}

// ThemeRepository defines the interface for theme data access.
type ThemeRepository interface {
	// Create inserts a new theme and populates theme.ID.
	Create(ctx context.Context, theme *domain.Theme) error

	// GetByID retrieves a theme by ID. Returns domain.ErrThemeNotFound when
	// absent.
	GetByID(ctx context.Context, id int64) (*domain.Theme, error)

	// List returns all themes ordered by name.
	List(ctx context.Context) ([]*domain.Theme, error)

	// Count returns the number of themes. Used by the seeder to decide
	// whether the catalog is empty.
	Count(ctx context.Context) (int64, error)
}
