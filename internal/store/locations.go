// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/paulkiren/geopulse/internal/models"
)

// LocationFilter narrows a List query. Zero values mean "no constraint";
// Limit <= 0 falls back to the caller's default.
type LocationFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// LocationUpdate carries a partial update. Nil fields are left unchanged;
// a non-nil pointer is always applied, so zero values are legal updates.
type LocationUpdate struct {
	Latitude  *float64
	Longitude *float64
	Accuracy  *float64
	Address   *string
}

// LocationStore holds location records indexed by owner (userID -> ordered
// append sequence) and by record id.
type LocationStore struct {
	mu     sync.RWMutex
	byUser map[string][]*models.Location
	byID   map[string]*models.Location
}

// NewLocationStore creates an empty location store.
func NewLocationStore() *LocationStore {
	return &LocationStore{
		byUser: make(map[string][]*models.Location),
		byID:   make(map[string]*models.Location),
	}
}

// Append stores a new location for the user, assigning the id and the
// server-side timestamp.
func (s *LocationStore) Append(userID string, latitude, longitude float64, accuracy *float64, address *string) *models.Location {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc := &models.Location{
		ID:        uuid.New().String(),
		UserID:    userID,
		Latitude:  latitude,
		Longitude: longitude,
		Accuracy:  accuracy,
		Address:   address,
		Timestamp: time.Now().UTC(),
	}

	s.byUser[userID] = append(s.byUser[userID], loc)
	s.byID[loc.ID] = loc
	return loc
}

// Get returns the location with the given id if it is owned by userID.
func (s *LocationStore) Get(userID, id string) (*models.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loc, ok := s.byID[id]
	if !ok || loc.UserID != userID {
		return nil, ErrNotFound
	}
	return copyLocation(loc), nil
}

// List returns the user's locations matching the filter, newest first,
// along with the total match count before pagination.
func (s *LocationStore) List(userID string, filter LocationFilter) ([]*models.Location, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.Location, 0, len(s.byUser[userID]))
	for _, loc := range s.byUser[userID] {
		if filter.StartDate != nil && loc.Timestamp.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && loc.Timestamp.After(*filter.EndDate) {
			continue
		}
		matched = append(matched, loc)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	total := len(matched)

	offset := filter.Offset
	if offset > total {
		offset = total
	}
	end := total
	if filter.Limit > 0 && offset+filter.Limit < end {
		end = offset + filter.Limit
	}

	page := make([]*models.Location, 0, end-offset)
	for _, loc := range matched[offset:end] {
		page = append(page, copyLocation(loc))
	}
	return page, total
}

// Update applies a partial update to an owned location. Only non-nil
// fields change; id, owner and timestamp are immutable.
func (s *LocationStore) Update(userID, id string, update LocationUpdate) (*models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc, ok := s.byID[id]
	if !ok || loc.UserID != userID {
		return nil, ErrNotFound
	}

	if update.Latitude != nil {
		loc.Latitude = *update.Latitude
	}
	if update.Longitude != nil {
		loc.Longitude = *update.Longitude
	}
	if update.Accuracy != nil {
		loc.Accuracy = update.Accuracy
	}
	if update.Address != nil {
		loc.Address = update.Address
	}
	return copyLocation(loc), nil
}

// Delete removes an owned location and returns the deleted record.
func (s *LocationStore) Delete(userID, id string) (*models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc, ok := s.byID[id]
	if !ok || loc.UserID != userID {
		return nil, ErrNotFound
	}

	delete(s.byID, id)
	owned := s.byUser[userID]
	for i, candidate := range owned {
		if candidate.ID == id {
			s.byUser[userID] = append(owned[:i], owned[i+1:]...)
			break
		}
	}
	return loc, nil
}

// Stats aggregates the user's locations: count, earliest and latest
// timestamps, and mean accuracy over records carrying one.
func (s *LocationStore) Stats(userID string) models.LocationStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := s.byUser[userID]
	stats := models.LocationStats{TotalLocations: len(owned)}
	if len(owned) == 0 {
		return stats
	}

	first := owned[0].Timestamp
	last := owned[0].Timestamp
	var accuracySum float64
	var accuracyCount int

	for _, loc := range owned {
		if loc.Timestamp.Before(first) {
			first = loc.Timestamp
		}
		if loc.Timestamp.After(last) {
			last = loc.Timestamp
		}
		if loc.Accuracy != nil {
			accuracySum += *loc.Accuracy
			accuracyCount++
		}
	}

	stats.FirstLocation = &first
	stats.LastLocation = &last
	if accuracyCount > 0 {
		mean := accuracySum / float64(accuracyCount)
		stats.AverageAccuracy = &mean
	}
	return stats
}

// Count returns the total number of stored locations across all users.
func (s *LocationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// copyLocation returns a shallow copy so callers cannot mutate stored
// records outside the store's lock.
func copyLocation(loc *models.Location) *models.Location {
	c := *loc
	return &c
}
