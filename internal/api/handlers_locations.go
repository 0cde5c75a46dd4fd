// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paulkiren/geopulse/internal/logging"
	"github.com/paulkiren/geopulse/internal/metrics"
	"github.com/paulkiren/geopulse/internal/store"
	"github.com/paulkiren/geopulse/internal/validation"
)

// CreateLocation handles POST /api/v1/locations.
func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	var req CreateLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationFailed(verr)
		return
	}

	loc := h.locations.Append(claims.UserID, *req.Latitude, *req.Longitude, req.Accuracy, req.Address)

	logging.Ctx(r.Context()).Info().
		Str("user_id", claims.UserID).
		Str("location_id", loc.ID).
		Float64("latitude", loc.Latitude).
		Float64("longitude", loc.Longitude).
		Msg("Location recorded")

	metrics.UpdateStoreGauges(h.users.Count(), h.locations.Count())

	rw.Created(map[string]interface{}{"location": loc})
}

// ListLocations handles GET /api/v1/locations with pagination and an
// optional date range, newest first.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	req, err := ParseListLocationsRequest(r, &h.cfg.API)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	locations, total := h.locations.List(claims.UserID, store.LocationFilter{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})

	rw.Success(map[string]interface{}{
		"locations": locations,
		"total":     total,
		"limit":     req.Limit,
		"offset":    req.Offset,
	})
}

// GetLocation handles GET /api/v1/locations/{id}.
func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	loc, err := h.locations.Get(claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.NotFound("Location not found")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Location lookup failed")
		rw.InternalError("Location lookup failed")
		return
	}

	rw.Success(map[string]interface{}{"location": loc})
}

// UpdateLocation handles PUT /api/v1/locations/{id}. Only fields present
// in the body change; explicit zero values are applied.
func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	var req UpdateLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationFailed(verr)
		return
	}

	loc, err := h.locations.Update(claims.UserID, chi.URLParam(r, "id"), store.LocationUpdate{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
		Address:   req.Address,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.NotFound("Location not found")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Location update failed")
		rw.InternalError("Location update failed")
		return
	}

	rw.Success(map[string]interface{}{"location": loc})
}

// DeleteLocation handles DELETE /api/v1/locations/{id}.
func (h *Handler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	loc, err := h.locations.Delete(claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.NotFound("Location not found")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Location delete failed")
		rw.InternalError("Location delete failed")
		return
	}

	metrics.UpdateStoreGauges(h.users.Count(), h.locations.Count())

	rw.Success(map[string]interface{}{"location": loc})
}

// LocationStats handles GET /api/v1/locations/stats/summary.
func (h *Handler) LocationStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	rw.Success(map[string]interface{}{"stats": h.locations.Stats(claims.UserID)})
}
