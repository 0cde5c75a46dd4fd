// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulkiren/geopulse/internal/config"
)

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateLocationRequest is the body of POST /api/v1/locations.
//
// Coordinates are pointers so that 0 is distinguishable from absent:
// the equator and the prime meridian are valid places to be.
type CreateLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Accuracy  *float64 `json:"accuracy" validate:"omitempty,gte=0"`
	Address   *string  `json:"address" validate:"omitempty,max=255"`
}

// UpdateLocationRequest is the body of PUT /api/v1/locations/{id}.
// Every field is optional; nil fields leave the stored value unchanged
// while explicit zero values are applied.
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	Accuracy  *float64 `json:"accuracy" validate:"omitempty,gte=0"`
	Address   *string  `json:"address" validate:"omitempty,max=255"`
}

// ListLocationsRequest carries the parsed query parameters of
// GET /api/v1/locations.
type ListLocationsRequest struct {
	Limit     int        `validate:"min=1"`
	Offset    int        `validate:"min=0"`
	StartDate *time.Time
	EndDate   *time.Time
}

// ParseListLocationsRequest parses pagination and date-range query
// parameters, clamping the limit to the configured page size ceiling.
func ParseListLocationsRequest(r *http.Request, cfg *config.APIConfig) (*ListLocationsRequest, error) {
	q := r.URL.Query()

	req := &ListLocationsRequest{
		Limit:  cfg.DefaultPageSize,
		Offset: 0,
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return nil, fmt.Errorf("limit must be a positive integer")
		}
		if limit > cfg.MaxPageSize {
			limit = cfg.MaxPageSize
		}
		req.Limit = limit
	}

	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("offset must be a non-negative integer")
		}
		req.Offset = offset
	}

	start, err := parseDateParam(q, "startDate")
	if err != nil {
		return nil, err
	}
	req.StartDate = start

	end, err := parseDateParam(q, "endDate")
	if err != nil {
		return nil, err
	}
	req.EndDate = end

	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("endDate must not be before startDate")
	}

	return req, nil
}

// parseDateParam parses an RFC3339 timestamp query parameter.
func parseDateParam(q url.Values, name string) (*time.Time, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC3339 timestamp", name)
	}
	return &t, nil
}
