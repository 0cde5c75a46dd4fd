// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/paulkiren/geopulse/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	// Bcrypt cost 4 keeps the suite fast.
	return NewService(store.NewUserStore(), newTestJWTManager(t, time.Hour), 4)
}

func TestServiceRegister(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  bool
	}{
		{
			name:     "valid registration",
			username: "alice_1",
			email:    "alice@example.com",
			password: "Str0ng!pass",
			wantErr:  false,
		},
		{
			name:     "username too short",
			username: "ab",
			email:    "short@example.com",
			password: "Str0ng!pass",
			wantErr:  true,
		},
		{
			name:     "username too long",
			username: "abcdefghijklmnopqrstu",
			email:    "long@example.com",
			password: "Str0ng!pass",
			wantErr:  true,
		},
		{
			name:     "username with invalid characters",
			username: "alice!",
			email:    "bang@example.com",
			password: "Str0ng!pass",
			wantErr:  true,
		},
		{
			name:     "weak password",
			username: "bob",
			email:    "bob@example.com",
			password: "password",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t)
			user, token, err := s.Register(tt.username, tt.email, tt.password)
			if tt.wantErr {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("Register() error = %v, want *ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if user.PasswordHash == tt.password {
				t.Error("Register() stored plaintext password")
			}
			if token == "" {
				t.Error("Register() returned empty token")
			}
		})
	}
}

func TestServiceRegisterDuplicate(t *testing.T) {
	s := newTestService(t)
	if _, _, err := s.Register("alice", "alice@example.com", "Str0ng!pass"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, _, err := s.Register("alice2", "alice@example.com", "Str0ng!pass"); !errors.Is(err, ErrUserExists) {
		t.Errorf("Register() duplicate email error = %v, want ErrUserExists", err)
	}
	if _, _, err := s.Register("alice", "other@example.com", "Str0ng!pass"); !errors.Is(err, ErrUserExists) {
		t.Errorf("Register() duplicate username error = %v, want ErrUserExists", err)
	}
}

func TestServiceLogin(t *testing.T) {
	s := newTestService(t)
	registered, _, err := s.Register("alice", "alice@example.com", "Str0ng!pass")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, token, err := s.Login("alice@example.com", "Str0ng!pass")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("Login() user id = %q, want %q", user.ID, registered.ID)
	}
	if token == "" {
		t.Error("Login() returned empty token")
	}

	t.Run("wrong password", func(t *testing.T) {
		if _, _, err := s.Login("alice@example.com", "Wr0ng!pass"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, _, err := s.Login("nobody@example.com", "Str0ng!pass"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestServiceProfileAndRefresh(t *testing.T) {
	s := newTestService(t)
	user, token, err := s.Register("alice", "alice@example.com", "Str0ng!pass")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	profile, err := s.Profile(user.ID)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if profile.Email != "alice@example.com" {
		t.Errorf("Profile() email = %q, want %q", profile.Email, "alice@example.com")
	}
	if _, err := s.Profile("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Profile(missing) error = %v, want ErrNotFound", err)
	}

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	refreshed, err := s.Refresh(claims)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refreshed == "" {
		t.Error("Refresh() returned empty token")
	}

	if _, err := s.Refresh(&Claims{UserID: "missing"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Refresh() for deleted user error = %v, want ErrInvalidCredentials", err)
	}
}
