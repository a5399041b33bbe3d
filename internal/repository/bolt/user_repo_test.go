package bolt

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickshelf/brickshelf/internal/domain"
	"github.com/brickshelf/brickshelf/internal/repository"
)

func newTestRepo(t *testing.T) repository.UserRepository {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "users.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return NewUserRepository(store)
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	user := domain.NewUser("alice", "a@x.com", "$2a$10$hash")
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByUserName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserName)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "$2a$10$hash", got.PasswordHash)
	assert.Empty(t, got.LoginHistory)

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", byEmail.UserName)
}

func TestUserRepository_GetByUserName_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByUserName(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_UserNameIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(ctx, domain.NewUser("Alice", "a@x.com", "h")))

	_, err := repo.GetByUserName(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.GetByUserName(ctx, "Alice")
	require.NoError(t, err)
}

func TestUserRepository_Create_DuplicateUserName(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(ctx, domain.NewUser("alice", "a@x.com", "h")))

	err := repo.Create(ctx, domain.NewUser("alice", "other@x.com", "h"))
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(ctx, domain.NewUser("alice", "a@x.com", "h")))

	err := repo.Create(ctx, domain.NewUser("bob", "a@x.com", "h"))
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	// The failed insert must not leave a half-created user behind.
	_, err = repo.GetByUserName(ctx, "bob")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_Create_ConcurrentSameUserName(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	const attempts = 8
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, domain.NewUser("alice", fmt.Sprintf("a%d@x.com", i), "h"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent registration must win")

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUserRepository_AppendLoginRecord(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(ctx, domain.NewUser("alice", "a@x.com", "h")))

	first := domain.LoginRecord{Timestamp: time.Now().UTC(), ClientAgent: "agent-1"}
	updated, err := repo.AppendLoginRecord(ctx, "alice", first)
	require.NoError(t, err)
	require.Len(t, updated.LoginHistory, 1)
	assert.Equal(t, "agent-1", updated.LoginHistory[0].ClientAgent)

	second := domain.LoginRecord{Timestamp: time.Now().UTC(), ClientAgent: "agent-2"}
	updated, err = repo.AppendLoginRecord(ctx, "alice", second)
	require.NoError(t, err)
	require.Len(t, updated.LoginHistory, 2)
	assert.Equal(t, "agent-1", updated.LoginHistory[0].ClientAgent)
	assert.Equal(t, "agent-2", updated.LoginHistory[1].ClientAgent)
}

func TestUserRepository_AppendLoginRecord_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.AppendLoginRecord(context.Background(), "ghost", domain.LoginRecord{
		Timestamp:   time.Now().UTC(),
		ClientAgent: "agent",
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_AppendLoginRecord_ConcurrentNoLostUpdates(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(ctx, domain.NewUser("alice", "a@x.com", "h")))

	const logins = 16
	var wg sync.WaitGroup
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.AppendLoginRecord(ctx, "alice", domain.LoginRecord{
				Timestamp:   time.Now().UTC(),
				ClientAgent: fmt.Sprintf("agent-%d", i),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	user, err := repo.GetByUserName(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, user.LoginHistory, logins)
}

func TestUserRepository_ExistsAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(ctx, domain.NewUser("bob", "b@x.com", "h")))
	require.NoError(t, repo.Create(ctx, domain.NewUser("alice", "a@x.com", "h")))

	exists, err := repo.ExistsByUserName(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUserName(ctx, "carol")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	// bbolt iterates in key byte order.
	assert.Equal(t, "alice", users[0].UserName)
	assert.Equal(t, "bob", users[1].UserName)
}
