// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

// Package main is the entry point for the GeoPulse ingestion server.
//
// The server exposes a JSON REST API for recording location samples,
// backed by in-memory per-user stores and JWT authentication.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: settings from environment variables and an optional
//     config file (Koanf v2)
//  2. Stores: in-memory user and location stores
//  3. Authentication: JWT manager and auth service (bcrypt hashing)
//  4. HTTP server: Chi router with rate limiting, CORS and Prometheus
//     metrics
//  5. Supervisor tree: suture keeps the HTTP server and maintenance
//     tasks running
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HTTP_PORT, JWT_SECRET, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// JWT_SECRET must be set to a value of at least 32 characters.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections and waits for in-flight requests to finish
// before exiting.
//
// # Example Usage
//
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export HTTP_PORT=3000
//	./geopulse-server
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paulkiren/geopulse/internal/api"
	"github.com/paulkiren/geopulse/internal/auth"
	"github.com/paulkiren/geopulse/internal/config"
	"github.com/paulkiren/geopulse/internal/logging"
	"github.com/paulkiren/geopulse/internal/store"
	"github.com/paulkiren/geopulse/internal/supervisor"
	"github.com/paulkiren/geopulse/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.ValidateServer(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("environment", cfg.Server.Environment).
		Msg("Starting GeoPulse server")

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_DISABLED=true)")
	}

	users := store.NewUserStore()
	locations := store.NewLocationStore()

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	authSvc := auth.NewService(users, jwtManager, cfg.Security.BcryptCost)
	authMw := auth.NewMiddleware(jwtManager)

	handler := api.NewHandler(cfg, authSvc, users, locations)
	router := api.NewRouter(cfg, handler, authMw)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	tree.AddAPIService(services.NewGaugeService(users, locations, 15*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

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
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
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

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
}
