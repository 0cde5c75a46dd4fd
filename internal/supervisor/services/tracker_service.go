// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package services

import (
	"context"
	"fmt"

	"github.com/paulkiren/geopulse/internal/tracking"
)

// SessionClient is the part of the ingestion client the tracker service
// needs for session management.
type SessionClient interface {
	Token() string
	Login(ctx context.Context, email, password string) error
}

// TrackerService runs a tracking controller under supervision. It logs in
// when no session token is configured, starts the controller and keeps it
// running until the supervisor cancels the context. Returning an error
// makes suture restart the service, which retries the login.
type TrackerService struct {
	controller *tracking.Controller
	client     SessionClient
	email      string
	password   string
	name       string
}

// NewTrackerService creates a supervised tracker.
func NewTrackerService(controller *tracking.Controller, client SessionClient, email, password string) *TrackerService {
	return &TrackerService{
		controller: controller,
		client:     client,
		email:      email,
		password:   password,
		name:       "tracker",
	}
}

// Serve implements suture.Service.
func (s *TrackerService) Serve(ctx context.Context) error {
	if s.client.Token() == "" {
		if err := s.client.Login(ctx, s.email, s.password); err != nil {
			return fmt.Errorf("tracker login failed: %w", err)
		}
	}

	if err := s.controller.Start(ctx); err != nil {
		return fmt.Errorf("tracker start failed: %w", err)
	}
	defer s.controller.Stop()

	<-ctx.Done()
	return ctx.Err()
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *TrackerService) String() string {
	return s.name
}
