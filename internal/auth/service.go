// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

// Package auth provides user registration, credential verification and
// JWT session management.
package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/paulkiren/geopulse/internal/logging"
	"github.com/paulkiren/geopulse/internal/models"
	"github.com/paulkiren/geopulse/internal/store"
)

// ErrInvalidCredentials is returned for every login failure. Callers must
// not reveal whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserExists is returned when registration hits an email or username
// that is already taken. The store's ErrEmailTaken/ErrUsernameTaken
// sentinels are wrapped so callers can still tell which field collided.
var ErrUserExists = errors.New("user already exists")

// usernamePattern restricts usernames to 3-20 alphanumeric characters or
// underscores.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// ValidationError reports registration input that fails policy checks.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Reasons, "; ")
}

// Service implements registration, login and profile lookup on top of
// the user store and JWT manager.
type Service struct {
	users      *store.UserStore
	tokens     *JWTManager
	policy     PasswordPolicy
	bcryptCost int
}

// NewService creates an auth service.
func NewService(users *store.UserStore, tokens *JWTManager, bcryptCost int) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		policy:     DefaultPasswordPolicy(),
		bcryptCost: bcryptCost,
	}
}

// Register creates a new user and returns the user together with a fresh
// session token.
//
// Username and password policy failures return a *ValidationError; a
// taken email or username returns ErrUserExists.
func (s *Service) Register(username, email, password string) (*models.User, string, error) {
	var reasons []string
	if !usernamePattern.MatchString(username) {
		reasons = append(reasons, "username must be 3-20 characters of letters, digits or underscores")
	}
	reasons = append(reasons, s.policy.Validate(password)...)
	if len(reasons) > 0 {
		return nil, "", &ValidationError{Reasons: reasons}
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.Create(username, email, hash)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) || errors.Is(err, store.ErrUsernameTaken) {
			return nil, "", fmt.Errorf("%w: %w", ErrUserExists, err)
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, "", err
	}

	logging.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("User registered")

	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh session
// token. Every failure mode maps to ErrInvalidCredentials so responses
// cannot be used to enumerate accounts.
func (s *Service) Login(email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		// Burn comparable time so a missing account is not
		// distinguishable from a wrong password.
		CheckPassword("$2a$12$invalidinvalidinvalidinviOn3OFJhK1v7yPq0D0bWvQhQyLmUJW9S", password)
		return nil, "", ErrInvalidCredentials
	}

	if !CheckPassword(user.PasswordHash, password) {
		logging.Warn().
			Str("user_id", user.ID).
			Msg("Login attempt with wrong password")
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, "", err
	}

	logging.Info().
		Str("user_id", user.ID).
		Msg("User logged in")

	return user, token, nil
}

// Profile returns the user behind a validated token.
func (s *Service) Profile(userID string) (*models.User, error) {
	return s.users.GetByID(userID)
}

// Refresh issues a new token for an already-authenticated user, resetting
// the session expiry.
func (s *Service) Refresh(claims *Claims) (string, error) {
	// Re-check the account still exists before extending the session.
	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	return s.tokens.GenerateToken(user.ID, user.Username, user.Email)
}
