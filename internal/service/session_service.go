package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brickshelf/brickshelf/internal/domain"
	"github.com/brickshelf/brickshelf/internal/repository"
)

// Session is the server-side session record stored in the cache.
// The cookie only carries a signed token referencing it by ID.
type Session struct {
	ID        string    `json:"id"`
	UserName  string    `json:"user_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionService manages login sessions. Session state lives in the cache
// keyed by a random ID; the token handed to clients is a signed JWT whose
// jti claim is that ID. Possession of the token proves nothing unless the
// server-side record still exists, so logout is immediate.
type SessionService struct {
	auth       *AuthService
	cache      repository.Cache
	signingKey []byte
	duration   time.Duration
	logger     zerolog.Logger

	cacheKey repository.CacheKey
}

// NewSessionService creates a new SessionService.
func NewSessionService(auth *AuthService, cache repository.Cache, signingKey []byte, duration time.Duration, logger zerolog.Logger) *SessionService {
	return &SessionService{
		auth:       auth,
		cache:      cache,
		signingKey: signingKey,
		duration:   duration,
		logger:     logger.With().Str("service", "session").Logger(),
	}
}

// LoginInput contains the data needed to log a user in.
type LoginInput struct {
	UserName    string
	Password    string
	ClientAgent string
}

// LoginOutput contains the result of a successful login.
type LoginOutput struct {
	// User is the authenticated user with the fresh login record.
	User *domain.User

	// Token is the signed session token to set as the cookie value.
	Token string

	// ExpiresAt is when the session expires absent further activity.
	ExpiresAt time.Time
}

// Login authenticates the credentials and creates a session for the user.
// Authentication errors pass through unchanged so the caller can map them.
func (s *SessionService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	out, err := s.auth.Authenticate(ctx, AuthenticateInput{
		UserName:    input.UserName,
		Password:    input.Password,
		ClientAgent: input.ClientAgent,
	})
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        uuid.NewString(),
		UserName:  out.User.UserName,
		Email:     out.User.Email,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.cache.Set(ctx, s.cacheKey.Session(session.ID), payload, s.duration); err != nil {
		s.logger.Error().Err(err).Str("user_name", session.UserName).Msg("failed to store session")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	token, err := s.signToken(session.ID)
	if err != nil {
		// The orphaned record expires on its own; best effort cleanup.
		_ = s.cache.Delete(ctx, s.cacheKey.Session(session.ID))
		s.logger.Error().Err(err).Msg("failed to sign session token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_name", session.UserName).
		Str("session_id", session.ID).
		Msg("session created")

	return &LoginOutput{
		User:      out.User,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.duration),
	}, nil
}

// Validate verifies a session token and returns the session it references.
// A valid token with no matching server-side record means the session was
// logged out or expired. Validation slides the expiry forward.
func (s *SessionService) Validate(ctx context.Context, token string) (*Session, error) {
	sessionID, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}

	payload, err := s.cache.Get(ctx, s.cacheKey.Session(sessionID))
	if err != nil {
		if errors.Is(err, repository.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to load session")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	session := &Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to decode session")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	// Sliding expiry: activity keeps the session alive.
	if err := s.cache.Expire(ctx, s.cacheKey.Session(sessionID), s.duration); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to extend session")
	}

	return session, nil
}

// Logout destroys the session referenced by the token. Logging out with an
// invalid or already-expired token is not an error.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	sessionID, err := s.parseToken(token)
	if err != nil {
		return nil
	}

	if err := s.cache.Delete(ctx, s.cacheKey.Session(sessionID)); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to delete session")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("session_id", sessionID).Msg("session destroyed")
	return nil
}

// signToken creates a signed JWT carrying the session ID as its jti claim.
func (s *SessionService) signToken(sessionID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// parseToken verifies the token signature and returns the session ID.
func (s *SessionService) parseToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrSessionInvalid
	}
	if claims.ID == "" {
		return "", ErrSessionInvalid
	}
	return claims.ID, nil
}
