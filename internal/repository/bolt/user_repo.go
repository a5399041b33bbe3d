package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/brickshelf/brickshelf/internal/domain"
	"github.com/brickshelf/brickshelf/internal/repository"
)

// userDoc is the stored form of a user. The domain type hides the password
// hash from JSON marshaling, so the store uses its own document shape.
type userDoc struct {
	UserName     string               `json:"user_name"`
	Email        string               `json:"email"`
	PasswordHash string               `json:"password_hash"`
	LoginHistory []domain.LoginRecord `json:"login_history"`
	CreatedAt    time.Time            `json:"created_at"`
}

func toDoc(user *domain.User) *userDoc {
	return &userDoc{
		UserName:     user.UserName,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		LoginHistory: user.LoginHistory,
		CreatedAt:    user.CreatedAt,
	}
}

func (d *userDoc) toDomain() *domain.User {
	history := d.LoginHistory
	if history == nil {
		history = []domain.LoginRecord{}
	}
	return &domain.User{
		UserName:     d.UserName,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		LoginHistory: history,
		CreatedAt:    d.CreatedAt,
	}
}

// userRepository implements repository.UserRepository on top of bbolt.
type userRepository struct {
	store *Store
}

// NewUserRepository creates a new bbolt user repository.
func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

// Create persists a new user. The uniqueness checks and both bucket writes
// happen in one write transaction, so exactly one of any set of concurrent
// registrations for the same user name or email can succeed.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.store.db.Update(func(tx *bbolt.Tx) error {
		users := tx.Bucket(bucketUsers)
		emails := tx.Bucket(bucketEmails)

		if users.Get([]byte(user.UserName)) != nil {
			return fmt.Errorf("%w: user name %q is taken", domain.ErrUserAlreadyExists, user.UserName)
		}
		if emails.Get([]byte(user.Email)) != nil {
			return fmt.Errorf("%w: email %q is taken", domain.ErrUserAlreadyExists, user.Email)
		}

		doc, err := json.Marshal(toDoc(user))
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}

		if err := users.Put([]byte(user.UserName), doc); err != nil {
			return fmt.Errorf("failed to store user: %w", err)
		}
		if err := emails.Put([]byte(user.Email), []byte(user.UserName)); err != nil {
			return fmt.Errorf("failed to index email: %w", err)
		}
		return nil
	})
}

// GetByUserName retrieves a user by exact user name.
func (r *userRepository) GetByUserName(ctx context.Context, userName string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user *domain.User
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		doc := tx.Bucket(bucketUsers).Get([]byte(userName))
		if doc == nil {
			return domain.ErrUserNotFound
		}
		stored := &userDoc{}
		if err := json.Unmarshal(doc, stored); err != nil {
			return fmt.Errorf("failed to decode user: %w", err)
		}
		user = stored.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user by email via the email index.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user *domain.User
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		name := tx.Bucket(bucketEmails).Get([]byte(email))
		if name == nil {
			return domain.ErrUserNotFound
		}
		doc := tx.Bucket(bucketUsers).Get(name)
		if doc == nil {
			return domain.ErrUserNotFound
		}
		stored := &userDoc{}
		if err := json.Unmarshal(doc, stored); err != nil {
			return fmt.Errorf("failed to decode user: %w", err)
		}
		user = stored.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// AppendLoginRecord appends a record to the user's login history.
// The read-modify-write runs inside one write transaction; bbolt serializes
// writers, so concurrent successful logins cannot drop each other's entries.
func (r *userRepository) AppendLoginRecord(ctx context.Context, userName string, rec domain.LoginRecord) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user *domain.User
	err := r.store.db.Update(func(tx *bbolt.Tx) error {
		users := tx.Bucket(bucketUsers)

		doc := users.Get([]byte(userName))
		if doc == nil {
			return domain.ErrUserNotFound
		}

		stored := &userDoc{}
		if err := json.Unmarshal(doc, stored); err != nil {
			return fmt.Errorf("failed to decode user: %w", err)
		}

		stored.LoginHistory = append(stored.LoginHistory, rec)

		updated, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		if err := users.Put([]byte(userName), updated); err != nil {
			return fmt.Errorf("failed to store user: %w", err)
		}
		user = stored.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ExistsByUserName checks if a user with the given user name exists.
func (r *userRepository) ExistsByUserName(ctx context.Context, userName string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var exists bool
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket(bucketUsers).Get([]byte(userName)) != nil
		return nil
	})
	return exists, err
}

// ExistsByEmail checks if a user with the given email exists.
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var exists bool
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket(bucketEmails).Get([]byte(email)) != nil
		return nil
	})
	return exists, err
}

// Count returns the total number of registered users.
func (r *userRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int64
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		count = int64(tx.Bucket(bucketUsers).Stats().KeyN)
		return nil
	})
	return count, err
}

// List returns all users ordered by user name (bbolt iterates keys in
// byte order).
func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var users []*domain.User
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketUsers).ForEach(func(k, v []byte) error {
			stored := &userDoc{}
			if err := json.Unmarshal(v, stored); err != nil {
				return fmt.Errorf("failed to decode user %q: %w", k, err)
			}
			users = append(users, stored.toDomain())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Ensure userRepository implements repository.UserRepository.
var _ repository.UserRepository = (*userRepository)(nil)
