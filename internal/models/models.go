// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

// Package models defines the core domain types shared by the store, the
// auth service and the HTTP layer.
package models

import "time"

// User is an account that owns location records. Unique on both email and
// username. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public returns the externally visible view of the user.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser is the response shape for user data.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Location is a stored location record. Accuracy and Address are optional;
// the server assigns ID and Timestamp at ingestion time.
type Location struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Address   *string   `json:"address,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LocationStats summarizes a user's stored locations. AverageAccuracy is
// the mean over records that carry an accuracy value, nil when none do.
type LocationStats struct {
	TotalLocations  int        `json:"totalLocations"`
	FirstLocation   *time.Time `json:"firstLocation"`
	LastLocation    *time.Time `json:"lastLocation"`
	AverageAccuracy *float64   `json:"averageAccuracy"`
}

// HealthStatus is the /health response payload.
type HealthStatus struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Environment   string  `json:"environment"`
	UptimeSeconds float64 `json:"uptime"`
}
