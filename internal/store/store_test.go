// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package store

import (
	"errors"
	"testing"
	"time"
)

func TestUserStoreCreate(t *testing.T) {
	s := NewUserStore()

	first, err := s.Create("alice", "alice@example.com", "hash-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if first.ID == "" {
		t.Error("Create() returned user without id")
	}
	if first.CreatedAt.IsZero() {
		t.Error("Create() returned user without created_at")
	}

	tests := []struct {
		name     string
		email    string
		username string
		wantErr  error
	}{
		{
			name:     "duplicate email",
			email:    "alice@example.com",
			username: "alice2",
			wantErr:  ErrEmailTaken,
		},
		{
			name:     "duplicate email different case",
			email:    "ALICE@example.com",
			username: "alice3",
			wantErr:  ErrEmailTaken,
		},
		{
			name:     "duplicate username",
			email:    "other@example.com",
			username: "alice",
			wantErr:  ErrUsernameTaken,
		},
		{
			name:     "duplicate username different case",
			email:    "other@example.com",
			username: "ALICE",
			wantErr:  ErrUsernameTaken,
		},
		{
			name:     "distinct user",
			email:    "bob@example.com",
			username: "bob",
			wantErr:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(tt.username, tt.email, "hash")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserStoreLookup(t *testing.T) {
	s := NewUserStore()
	created, err := s.Create("carol", "carol@example.com", "hash")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	byID, err := s.GetByID(created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Username != "carol" {
		t.Errorf("GetByID() username = %q, want %q", byID.Username, "carol")
	}

	byEmail, err := s.GetByEmail("CAROL@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("GetByEmail() id = %q, want %q", byEmail.ID, created.ID)
	}

	if _, err := s.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetByEmail("missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByEmail(missing) error = %v, want ErrNotFound", err)
	}
}

func TestLocationStoreAppendAndGet(t *testing.T) {
	s := NewLocationStore()

	accuracy := 12.5
	address := "1 Main St"
	loc := s.Append("user-1", 51.5074, -0.1278, &accuracy, &address)

	if loc.ID == "" {
		t.Fatal("Append() returned location without id")
	}
	if loc.Timestamp.IsZero() {
		t.Error("Append() returned location without timestamp")
	}
	if loc.Timestamp.Location() != time.UTC {
		t.Error("Append() timestamp is not UTC")
	}

	got, err := s.Get("user-1", loc.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Latitude != 51.5074 || got.Longitude != -0.1278 {
		t.Errorf("Get() coords = (%v, %v), want (51.5074, -0.1278)", got.Latitude, got.Longitude)
	}
	if got.Accuracy == nil || *got.Accuracy != 12.5 {
		t.Errorf("Get() accuracy = %v, want 12.5", got.Accuracy)
	}
}

func TestLocationStoreTenantIsolation(t *testing.T) {
	s := NewLocationStore()
	loc := s.Append("owner", 10, 20, nil, nil)

	if _, err := s.Get("intruder", loc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() across users error = %v, want ErrNotFound", err)
	}
	lat := 0.0
	if _, err := s.Update("intruder", loc.ID, LocationUpdate{Latitude: &lat}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() across users error = %v, want ErrNotFound", err)
	}
	if _, err := s.Delete("intruder", loc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() across users error = %v, want ErrNotFound", err)
	}

	// The record itself must be untouched afterwards.
	got, err := s.Get("owner", loc.ID)
	if err != nil {
		t.Fatalf("Get() after cross-user attempts error = %v", err)
	}
	if got.Latitude != 10 {
		t.Errorf("latitude changed to %v after rejected update", got.Latitude)
	}
}

func TestLocationStoreList(t *testing.T) {
	s := NewLocationStore()
	for i := 0; i < 5; i++ {
		s.Append("user-1", float64(i), float64(i), nil, nil)
		time.Sleep(time.Millisecond)
	}
	s.Append("user-2", 99, 99, nil, nil)

	all, total := s.List("user-1", LocationFilter{})
	if total != 5 {
		t.Fatalf("List() total = %d, want 5", total)
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.After(all[i-1].Timestamp) {
			t.Fatal("List() not ordered newest first")
		}
	}

	page, total := s.List("user-1", LocationFilter{Limit: 2, Offset: 1})
	if total != 5 {
		t.Errorf("paged List() total = %d, want 5", total)
	}
	if len(page) != 2 {
		t.Errorf("paged List() len = %d, want 2", len(page))
	}

	cutoff := all[2].Timestamp
	filtered, total := s.List("user-1", LocationFilter{StartDate: &cutoff})
	if total != 3 {
		t.Errorf("filtered List() total = %d, want 3", total)
	}
	for _, loc := range filtered {
		if loc.Timestamp.Before(cutoff) {
			t.Errorf("filtered List() returned record before start date")
		}
	}

	empty, total := s.List("nobody", LocationFilter{})
	if total != 0 || len(empty) != 0 {
		t.Errorf("List() for unknown user = (%d records, total %d), want empty", len(empty), total)
	}
}

func TestLocationStoreUpdate(t *testing.T) {
	s := NewLocationStore()
	accuracy := 50.0
	loc := s.Append("user-1", 1, 2, &accuracy, nil)

	zero := 0.0
	address := ""
	updated, err := s.Update("user-1", loc.ID, LocationUpdate{
		Latitude: &zero,
		Accuracy: &zero,
		Address:  &address,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Latitude != 0 {
		t.Errorf("latitude = %v, want explicit 0 applied", updated.Latitude)
	}
	if updated.Longitude != 2 {
		t.Errorf("longitude = %v, want 2 unchanged", updated.Longitude)
	}
	if updated.Accuracy == nil || *updated.Accuracy != 0 {
		t.Errorf("accuracy = %v, want explicit 0 applied", updated.Accuracy)
	}
	if updated.Address == nil || *updated.Address != "" {
		t.Errorf("address = %v, want explicit empty string applied", updated.Address)
	}
	if !updated.Timestamp.Equal(loc.Timestamp) {
		t.Error("Update() changed the timestamp")
	}

	if _, err := s.Update("user-1", "missing", LocationUpdate{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestLocationStoreDelete(t *testing.T) {
	s := NewLocationStore()
	loc := s.Append("user-1", 1, 2, nil, nil)

	deleted, err := s.Delete("user-1", loc.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.ID != loc.ID {
		t.Errorf("Delete() id = %q, want %q", deleted.ID, loc.ID)
	}

	if _, err := s.Get("user-1", loc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if _, total := s.List("user-1", LocationFilter{}); total != 0 {
		t.Errorf("List() after delete total = %d, want 0", total)
	}
	if _, err := s.Delete("user-1", loc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestLocationStoreStats(t *testing.T) {
	s := NewLocationStore()

	empty := s.Stats("user-1")
	if empty.TotalLocations != 0 || empty.FirstLocation != nil || empty.LastLocation != nil || empty.AverageAccuracy != nil {
		t.Errorf("Stats() for empty user = %+v, want zero stats", empty)
	}

	accA := 10.0
	accB := 30.0
	s.Append("user-1", 1, 1, &accA, nil)
	time.Sleep(time.Millisecond)
	s.Append("user-1", 2, 2, nil, nil)
	time.Sleep(time.Millisecond)
	s.Append("user-1", 3, 3, &accB, nil)

	stats := s.Stats("user-1")
	if stats.TotalLocations != 3 {
		t.Errorf("TotalLocations = %d, want 3", stats.TotalLocations)
	}
	if stats.FirstLocation == nil || stats.LastLocation == nil {
		t.Fatal("Stats() missing first/last timestamps")
	}
	if !stats.FirstLocation.Before(*stats.LastLocation) {
		t.Error("FirstLocation is not before LastLocation")
	}
	if stats.AverageAccuracy == nil || *stats.AverageAccuracy != 20.0 {
		t.Errorf("AverageAccuracy = %v, want 20.0 over records with accuracy", stats.AverageAccuracy)
	}
}
