// Package bolt provides the bbolt-backed user store.
// bbolt is an embedded key/value store with serialized write transactions;
// every mutation here runs in a single Update transaction, which is what
// makes user-name/email uniqueness and login-history appends atomic without
// any extra coordination.
package bolt

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.etcd.io/bbolt"
)

var (
	// bucketUsers maps user name -> JSON-encoded user document.
	bucketUsers = []byte("users")

	// bucketEmails maps email -> user name. It is the unique index that
	// makes email collisions fail at insert time.
	bucketEmails = []byte("user_emails")
)

// Store wraps a bbolt database holding user documents.
type Store struct {
	db     *bbolt.DB
	logger zerolog.Logger
}

// Open opens (or creates) the user database at path and ensures the
// required buckets exist.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open user database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketUsers); err != nil {
			return fmt.Errorf("failed to create users bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists(bucketEmails); err != nil {
			return fmt.Errorf("failed to create email index bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Str("path", path).Msg("opened user database")

	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.logger.Info().Msg("closing user database")
	return s.db.Close()
}

// DB returns the underlying bbolt database.
func (s *Store) DB() *bbolt.DB {
	return s.db
}
