package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xplainit/xplainit-be/internal/auth"
	"github.com/xplainit/xplainit-be/internal/models"
	"github.com/xplainit/xplainit-be/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for every authentication failure:
// unknown username, wrong password, bad or expired token, and a token
// whose user has since been deleted. Callers cannot tell which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthServiceProvider defines the interface for authentication services.
type AuthServiceProvider interface {
	Signup(ctx context.Context, username, email, password, fullName string) (models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Resolve(ctx context.Context, token string) (models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// AuthService composes the credential store and the token service into
// the signup/login/identity-check operations.
type AuthService struct {
	store  storage.Store
	tokens *auth.TokenService
}

// NewAuthService creates a new AuthService.
func NewAuthService(store storage.Store, tokens *auth.TokenService) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

// Signup registers a new user, hashing their password. The username
// conflict is checked before the email conflict, so when both are taken
// the username error wins. The store's unique constraints still back
// these checks under concurrent signups.
func (s *AuthService) Signup(ctx context.Context, username, email, password, fullName string) (models.User, error) {
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return models.User{}, storage.ErrDuplicateUsername
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.User{}, err
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return models.User{}, storage.ErrDuplicateEmail
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		FullName:     fullName,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return models.User{}, err
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Login verifies the credentials and issues a bearer token with the
// username as subject.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// Resolve maps a presented token back to its user. Token failures and a
// missing user both collapse to ErrInvalidCredentials.
func (s *AuthService) Resolve(ctx context.Context, token string) (models.User, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// DeleteUser removes a user account and all of its explanations.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	cascaded, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	log.Info().Str("user_id", id).Int64("explanations_deleted", cascaded).Msg("User deleted")
	return nil
}
