// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package api

import (
	"errors"
	"net/http"

	"github.com/paulkiren/geopulse/internal/auth"
	"github.com/paulkiren/geopulse/internal/logging"
	"github.com/paulkiren/geopulse/internal/metrics"
	"github.com/paulkiren/geopulse/internal/store"
	"github.com/paulkiren/geopulse/internal/validation"
)

// Register handles POST /api/v1/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationFailed(verr)
		return
	}

	user, token, err := h.authSvc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		metrics.RecordAuthAttempt("register", false)

		var ve *auth.ValidationError
		switch {
		case errors.As(err, &ve):
			rw.BadRequest(ve.Error())
		case errors.Is(err, store.ErrEmailTaken):
			rw.BadRequest("Email already exists")
		case errors.Is(err, store.ErrUsernameTaken):
			rw.BadRequest("Username already exists")
		case errors.Is(err, auth.ErrUserExists):
			rw.BadRequest("User already exists")
		default:
			logging.Ctx(r.Context()).Error().Err(err).Msg("Registration failed")
			rw.InternalError("Registration failed")
		}
		return
	}

	metrics.RecordAuthAttempt("register", true)
	metrics.UpdateStoreGauges(h.users.Count(), h.locations.Count())

	rw.Created(map[string]interface{}{
		"user":  user.Public(),
		"token": token,
	})
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationFailed(verr)
		return
	}

	user, token, err := h.authSvc.Login(req.Email, req.Password)
	if err != nil {
		metrics.RecordAuthAttempt("login", false)

		if errors.Is(err, auth.ErrInvalidCredentials) {
			rw.Unauthorized("Invalid credentials")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Login failed")
		rw.InternalError("Login failed")
		return
	}

	metrics.RecordAuthAttempt("login", true)

	rw.Success(map[string]interface{}{
		"user":  user.Public(),
		"token": token,
	})
}

// Profile handles GET /api/v1/auth/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	user, err := h.authSvc.Profile(claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.NotFound("User not found")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Profile lookup failed")
		rw.InternalError("Profile lookup failed")
		return
	}

	rw.Success(map[string]interface{}{"user": user.Public()})
}

// Logout handles POST /api/v1/auth/logout. Tokens are stateless, so the
// server has nothing to revoke; the client discards its copy.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	logging.Ctx(r.Context()).Info().Str("user_id", claims.UserID).Msg("User logged out")
	rw.Success(map[string]interface{}{"message": "Logged out successfully"})
}

// Refresh handles POST /api/v1/auth/refresh, issuing a new token with a
// fresh expiry for an authenticated caller.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	token, err := h.authSvc.Refresh(claims)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			rw.Forbidden("Invalid or expired token")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Token refresh failed")
		rw.InternalError("Token refresh failed")
		return
	}

	rw.Success(map[string]interface{}{"token": token})
}
