// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/paulkiren/geopulse/internal/auth"
	"github.com/paulkiren/geopulse/internal/config"
	"github.com/paulkiren/geopulse/internal/models"
	"github.com/paulkiren/geopulse/internal/store"
)

// maxRequestBodyBytes bounds JSON request bodies.
const maxRequestBodyBytes = 1 << 20 // 1 MiB

// Version is the application version, injected at build time.
var Version = "dev"

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	cfg       *config.Config
	authSvc   *auth.Service
	users     *store.UserStore
	locations *store.LocationStore
	startTime time.Time
}

// NewHandler creates a handler with its dependencies.
func NewHandler(cfg *config.Config, authSvc *auth.Service, users *store.UserStore, locations *store.LocationStore) *Handler {
	return &Handler{
		cfg:       cfg,
		authSvc:   authSvc,
		users:     users,
		locations: locations,
		startTime: time.Now(),
	}
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, models.HealthStatus{
		Status:        "ok",
		Version:       Version,
		Environment:   h.cfg.Server.Environment,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// HealthLive handles GET /api/v1/health/live. It answers as soon as the
// process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready. The in-memory stores are
// ready as soon as they exist, so readiness mirrors liveness here.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]string{"status": "ready"})
}

// Root handles GET /, describing the API for discovery.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"name":    "GeoPulse API",
		"version": Version,
		"endpoints": map[string]string{
			"health":    "/api/v1/health",
			"auth":      "/api/v1/auth",
			"locations": "/api/v1/locations",
		},
	})
}

// NotFound handles unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusNotFound, fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path))
}

// MethodNotAllowed handles matched routes with an unsupported method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path))
}

// decodeJSON decodes a bounded JSON request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

// callerClaims resolves the authenticated caller's claims or writes a 401.
func callerClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r, http.StatusUnauthorized, "Access token required")
		return nil, false
	}
	return claims, true
}
