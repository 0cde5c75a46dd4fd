// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paulkiren/geopulse/internal/auth"
	"github.com/paulkiren/geopulse/internal/config"
	"github.com/paulkiren/geopulse/internal/middleware"
)

// Router wires handlers and middleware into the HTTP surface.
type Router struct {
	handler       *Handler
	authMw        *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router from the handler and middleware stack.
func NewRouter(cfg *config.Config, handler *Handler, authMw *auth.Middleware) *Router {
	return &Router{
		handler: handler,
		authMw:  authMw,
		chiMiddleware: NewChiMiddlewareFromConfig(
			cfg.Security.CORSOrigins,
			cfg.Security.RateLimitReqs,
			cfg.Security.RateLimitWindow,
			cfg.Security.RateLimitDisabled,
		),
	}
}

// Setup configures all HTTP routes using Chi router.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(router.handler.NotFound)
	r.MethodNotAllowed(router.handler.MethodNotAllowed)

	r.Get("/", router.handler.Root)

	// Root alias for external monitors that expect a bare /health.
	r.With(router.chiMiddleware.RateLimitHealth()).Get("/health", router.handler.Health)

	// Health endpoints: permissive rate limiting so monitoring can poll
	// frequently without tripping limits.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// Authentication endpoints: strict rate limiting against brute force.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAuth())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Post("/register", router.handler.Register)
		r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", router.handler.Login)

		r.Group(func(r chi.Router) {
			r.Use(router.authMw.Authenticate)
			r.Get("/profile", router.handler.Profile)
			r.Post("/refresh", router.handler.Refresh)
			r.Post("/logout", router.handler.Logout)
		})
	})

	// Location endpoints: authenticated, with tighter limits on writes.
	r.Route("/api/v1/locations", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.authMw.Authenticate)

		r.Get("/", router.handler.ListLocations)
		r.With(router.chiMiddleware.RateLimitWrite()).Post("/", router.handler.CreateLocation)
		r.Get("/stats/summary", router.handler.LocationStats)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", router.handler.GetLocation)
			r.With(router.chiMiddleware.RateLimitWrite()).Put("/", router.handler.UpdateLocation)
			r.With(router.chiMiddleware.RateLimitWrite()).Delete("/", router.handler.DeleteLocation)
		})
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
