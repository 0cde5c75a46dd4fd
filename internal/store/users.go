// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

// Package store provides the in-memory, key-indexed storage backing the
// ingestion API. It is an explicit placeholder for a persistent store: the
// interface surface (Create/Get/List/Update/Delete with owner scoping) is
// what a database-backed implementation would keep.
//
// All collections are guarded by RWMutex so the store is safe under Go's
// concurrent HTTP server, unlike the single-threaded event loop the
// original design assumed.
package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/paulkiren/geopulse/internal/models"
)

var (
	// ErrEmailTaken is returned when registering with an existing email.
	ErrEmailTaken = errors.New("email already exists")

	// ErrUsernameTaken is returned when registering with an existing username.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrNotFound is returned when a record does not exist or is not owned
	// by the caller.
	ErrNotFound = errors.New("not found")
)

// UserStore holds registered users indexed by id, email and username.
type UserStore struct {
	mu         sync.RWMutex
	byID       map[string]*models.User
	byEmail    map[string]*models.User
	byUsername map[string]*models.User
}

// NewUserStore creates an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:       make(map[string]*models.User),
		byEmail:    make(map[string]*models.User),
		byUsername: make(map[string]*models.User),
	}
}

// Create registers a new user. Email and username comparisons are
// case-insensitive. Returns ErrEmailTaken or ErrUsernameTaken on conflict.
func (s *UserStore) Create(username, email, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emailKey := strings.ToLower(email)
	usernameKey := strings.ToLower(username)

	if _, ok := s.byEmail[emailKey]; ok {
		return nil, ErrEmailTaken
	}
	if _, ok := s.byUsername[usernameKey]; ok {
		return nil, ErrUsernameTaken
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	s.byID[user.ID] = user
	s.byEmail[emailKey] = user
	s.byUsername[usernameKey] = user
	return user, nil
}

// GetByID returns the user with the given id.
func (s *UserStore) GetByID(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

// GetByEmail returns the user with the given email (case-insensitive).
func (s *UserStore) GetByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

// Count returns the number of registered users.
func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
