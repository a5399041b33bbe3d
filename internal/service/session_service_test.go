package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/brickshelf/brickshelf/internal/repository"
)

// mockCache is a map-backed repository.Cache for tests.
type mockCache struct {
	items  map[string][]byte
	setErr error
	getErr error
}

func newMockCache() *mockCache {
	return &mockCache{items: make(map[string][]byte)}
}

func (c *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	value, exists := c.items[key]
	if !exists {
		return nil, repository.ErrCacheMiss
	}
	return value, nil
}

func (c *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.items[key] = value
	return nil
}

func (c *mockCache) Delete(ctx context.Context, key string) error {
	delete(c.items, key)
	return nil
}

func (c *mockCache) Exists(ctx context.Context, key string) (bool, error) {
	_, exists := c.items[key]
	return exists, nil
}

func (c *mockCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

func newSessionFixture(t *testing.T) (*SessionService, *mockCache) {
	t.Helper()
	repo := NewMockUserRepository()
	auth := newAuthService(repo)
	registerUser(t, auth, "alice", "correct-horse", "alice@example.com")

	cache := newMockCache()
	svc := NewSessionService(auth, cache, testSigningKey, time.Hour, zerolog.Nop())
	return svc, cache
}

func TestSessionService_LoginAndValidate(t *testing.T) {
	svc, _ := newSessionFixture(t)
	ctx := context.Background()

	out, err := svc.Login(ctx, LoginInput{
		UserName:    "alice",
		Password:    "correct-horse",
		ClientAgent: "test-agent",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if out.Token == "" {
		t.Fatal("expected a session token")
	}
	if len(out.User.LoginHistory) != 1 {
		t.Errorf("expected login recorded, got %d entries", len(out.User.LoginHistory))
	}

	session, err := svc.Validate(ctx, out.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if session.UserName != "alice" {
		t.Errorf("expected session for alice, got %q", session.UserName)
	}
	if session.Email != "alice@example.com" {
		t.Errorf("expected email in session, got %q", session.Email)
	}
}

func TestSessionService_Login_BadCredentials(t *testing.T) {
	svc, cache := newSessionFixture(t)

	_, err := svc.Login(context.Background(), LoginInput{
		UserName: "alice",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(cache.items) != 0 {
		t.Error("failed login must not create a session")
	}
}

func TestSessionService_Validate_TamperedToken(t *testing.T) {
	svc, _ := newSessionFixture(t)
	ctx := context.Background()

	out, err := svc.Login(ctx, LoginInput{UserName: "alice", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Validate(ctx, out.Token+"x")
	if !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for tampered token, got %v", err)
	}
}

func TestSessionService_Validate_WrongSigningKey(t *testing.T) {
	svc, cache := newSessionFixture(t)
	ctx := context.Background()

	out, err := svc.Login(ctx, LoginInput{UserName: "alice", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	repo := NewMockUserRepository()
	other := NewSessionService(newAuthService(repo), cache, []byte("another-key-another-key-another!"), time.Hour, zerolog.Nop())

	_, err = other.Validate(ctx, out.Token)
	if !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid under different key, got %v", err)
	}
}

func TestSessionService_Logout(t *testing.T) {
	svc, _ := newSessionFixture(t)
	ctx := context.Background()

	out, err := svc.Login(ctx, LoginInput{UserName: "alice", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, out.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err = svc.Validate(ctx, out.Token)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after logout, got %v", err)
	}
}

func TestSessionService_Logout_GarbageToken(t *testing.T) {
	svc, _ := newSessionFixture(t)

	if err := svc.Logout(context.Background(), "not-a-token"); err != nil {
		t.Fatalf("logout with garbage token should be a no-op, got %v", err)
	}
}

func TestSessionService_Login_CacheFailure(t *testing.T) {
	svc, cache := newSessionFixture(t)
	cache.setErr = errors.New("redis down")

	_, err := svc.Login(context.Background(), LoginInput{
		UserName: "alice",
		Password: "correct-horse",
	})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence when session store fails, got %v", err)
	}
}
