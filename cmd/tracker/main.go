// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

// Package main is the entry point for the GeoPulse tracker agent.
//
// The tracker samples a location source at a configured interval,
// filters out poor-quality fixes and uploads the rest to a GeoPulse
// server with a bounded retry budget per sample.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, an optional config file and
// built-in defaults.
//
// The agent needs a server and credentials:
//   - TRACKER_SERVER_URL: base URL of the ingestion API
//   - TRACKER_EMAIL / TRACKER_PASSWORD: login credentials, or
//   - TRACKER_TOKEN: a pre-issued bearer token
//
// Sampling behavior:
//   - TRACKER_INTERVAL: time between samples (default 10s)
//   - TRACKER_MIN_DISPLACEMENT_METERS: suppress small movements
//   - TRACKER_ORIGIN_LATITUDE / TRACKER_ORIGIN_LONGITUDE: walk origin
//
// # Example Usage
//
//	export TRACKER_SERVER_URL=http://localhost:3000
//	export TRACKER_EMAIL=agent@example.com
//	export TRACKER_PASSWORD=Str0ng!pass
//	./geopulse-tracker
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/paulkiren/geopulse/internal/config"
	"github.com/paulkiren/geopulse/internal/geo"
	"github.com/paulkiren/geopulse/internal/logging"
	"github.com/paulkiren/geopulse/internal/supervisor"
	"github.com/paulkiren/geopulse/internal/supervisor/services"
	"github.com/paulkiren/geopulse/internal/tracking"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.ValidateTracker(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("server_url", cfg.Tracker.ServerURL).
		Dur("interval", cfg.Tracker.Interval).
		Msg("Starting GeoPulse tracker")

	client := tracking.NewClient(tracking.ClientConfig{
		ServerURL:      cfg.Tracker.ServerURL,
		Token:          cfg.Tracker.Token,
		RequestTimeout: cfg.Tracker.RequestTimeout,
	})

	source := geo.NewSimulatedSource(geo.SimulatedSourceConfig{
		OriginLatitude:  cfg.Tracker.OriginLatitude,
		OriginLongitude: cfg.Tracker.OriginLongitude,
	})
	source.LogWalkOrigin()

	sender := tracking.NewSender(client)
	controller := tracking.NewController(source, tracking.GrantedPermissions{}, sender, tracking.ControllerConfig{
		Interval:              cfg.Tracker.Interval,
		MinDisplacementMeters: cfg.Tracker.MinDisplacementMeters,
		MaxAccuracyMeters:     cfg.Tracker.MaxAccuracyMeters,
		MaxSampleAge:          cfg.Tracker.MaxSampleAge,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddTrackingService(services.NewTrackerService(
		controller, client, cfg.Tracker.Email, cfg.Tracker.Password,
	))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	logging.Info().Msg("Tracker stopped gracefully")
}
