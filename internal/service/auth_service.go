// Package service provides business logic services for Brickshelf.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/brickshelf/brickshelf/internal/domain"
	"github.com/brickshelf/brickshelf/internal/repository"
)

// AuthService handles user registration and credential verification.
type AuthService struct {
	userRepo   repository.UserRepository
	bcryptCost int
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService. A cost outside bcrypt's valid
// range falls back to the default cost.
func NewAuthService(userRepo repository.UserRepository, bcryptCost int, logger zerolog.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("service", "auth").Logger(),
	}
}

// RegisterInput contains the data needed to register a new user.
type RegisterInput struct {
	UserName        string
	Password        string
	ConfirmPassword string
	Email           string
}

// RegisterOutput contains the result of registering a user.
type RegisterOutput struct {
	User *domain.User
}

// Register creates a new user account. The password and its confirmation are
// compared before any store access; a mismatch never reaches the repository.
// The plaintext password is hashed with bcrypt and discarded.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	if err := s.validateRegisterInput(input); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: %v", ErrHashingFailed, err)
	}

	user := domain.NewUser(input.UserName, input.Email, string(passwordHash))

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, fmt.Errorf("%w: user name '%s'", ErrUserAlreadyExists, input.UserName)
		}
		s.logger.Error().Err(err).Str("user_name", input.UserName).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.logger.Info().
		Str("user_name", user.UserName).
		Str("email", user.Email).
		Msg("user registered")

	return &RegisterOutput{User: user}, nil
}

// AuthenticateInput contains the data needed to authenticate a user.
type AuthenticateInput struct {
	UserName string
	Password string

	// ClientAgent describes the client performing the login, typically the
	// HTTP User-Agent header. Recorded in the login history on success.
	ClientAgent string
}

// AuthenticateOutput contains the result of a successful authentication.
type AuthenticateOutput struct {
	// User is the authenticated user, including the login record appended by
	// this authentication.
	User *domain.User
}

// Authenticate verifies credentials and, on success, appends a login record
// to the user's history before returning. Failed attempts never touch the
// history. Callers must treat ErrInvalidCredentials uniformly; whether the
// user name or the password was wrong is logged but not exposed.
func (s *AuthService) Authenticate(ctx context.Context, input AuthenticateInput) (*AuthenticateOutput, error) {
	if input.UserName == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUserName(ctx, input.UserName)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Debug().Str("user_name", input.UserName).Msg("user not found during authentication")
			return nil, fmt.Errorf("%w: unable to find user '%s'", ErrUserNotFound, input.UserName)
		}
		s.logger.Error().Err(err).Str("user_name", input.UserName).Msg("failed to load user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.Debug().Str("user_name", input.UserName).Msg("invalid password during authentication")
		return nil, fmt.Errorf("%w: incorrect password for user '%s'", ErrInvalidCredentials, input.UserName)
	}

	rec := domain.LoginRecord{
		Timestamp:   time.Now().UTC(),
		ClientAgent: input.ClientAgent,
	}

	updated, err := s.userRepo.AppendLoginRecord(ctx, user.UserName, rec)
	if err != nil {
		s.logger.Error().Err(err).Str("user_name", user.UserName).Msg("failed to record login")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.logger.Info().
		Str("user_name", updated.UserName).
		Int("login_count", len(updated.LoginHistory)).
		Msg("user authenticated")

	return &AuthenticateOutput{User: updated}, nil
}

// GetUser retrieves a user by user name.
func (s *AuthService) GetUser(ctx context.Context, userName string) (*domain.User, error) {
	user, err := s.userRepo.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_name", userName).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// ListUsers returns all registered users. Used by the admin CLI.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return users, nil
}

// CountUsers returns the number of registered users.
func (s *AuthService) CountUsers(ctx context.Context) (int64, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count users")
		return 0, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return count, nil
}

// validateRegisterInput validates the input for registering a user.
func (s *AuthService) validateRegisterInput(input RegisterInput) error {
	if input.Password != input.ConfirmPassword {
		return ErrPasswordMismatch
	}

	if len(input.UserName) < 3 || len(input.UserName) > 255 {
		return ErrInvalidUserName
	}

	if _, err := mail.ParseAddress(input.Email); err != nil {
		return ErrInvalidEmail
	}

	if len(input.Password) < 8 {
		return ErrInvalidPassword
	}

	return nil
}
