// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

// Package api provides the HTTP ingestion and authentication surface.
// All endpoints use a consistent response envelope for client handling.
package api

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/paulkiren/geopulse/internal/logging"
	"github.com/paulkiren/geopulse/internal/validation"
)

// APIResponse is the standardized response wrapper for all API endpoints.
// Exactly one of Data and Error is set.
type APIResponse struct {
	// Success indicates whether the request was successful
	Success bool `json:"success"`

	// Data contains the response payload (omitted on error)
	Data interface{} `json:"data,omitempty"`

	// Error contains a human-readable error message (omitted on success)
	Error string `json:"error,omitempty"`

	// Details lists per-field validation failures (omitted otherwise)
	Details []FieldDetail `json:"details,omitempty"`
}

// FieldDetail describes a single field validation failure.
type FieldDetail struct {
	// Field is the request field that failed.
	Field string `json:"field"`

	// Tag is the machine-readable rule that rejected it.
	Tag string `json:"tag"`

	// Message is the human-readable explanation.
	Message string `json:"message"`
}

// ResponseWriter provides methods for writing standardized API responses.
type ResponseWriter struct {
	w http.ResponseWriter
	r *http.Request
}

// NewResponseWriter creates a new response writer.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{w: w, r: r}
}

// Success writes a 200 response with data.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.writeJSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// Created writes a 201 Created response.
func (rw *ResponseWriter) Created(data interface{}) {
	rw.writeJSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// Error writes an error response with the given status code.
func (rw *ResponseWriter) Error(statusCode int, message string) {
	rw.writeJSON(statusCode, APIResponse{Success: false, Error: message})
}

// BadRequest writes a 400 Bad Request error.
func (rw *ResponseWriter) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, message)
}

// ValidationFailed writes a 400 with the combined message and the
// per-field error list.
func (rw *ResponseWriter) ValidationFailed(verr *validation.RequestValidationError) {
	details := make([]FieldDetail, 0, len(verr.Errors()))
	for _, fe := range verr.Errors() {
		details = append(details, FieldDetail{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fe.Error(),
		})
	}
	rw.writeJSON(http.StatusBadRequest, APIResponse{
		Success: false,
		Error:   verr.Error(),
		Details: details,
	})
}

// Unauthorized writes a 401 Unauthorized error.
func (rw *ResponseWriter) Unauthorized(message string) {
	rw.Error(http.StatusUnauthorized, message)
}

// Forbidden writes a 403 Forbidden error.
func (rw *ResponseWriter) Forbidden(message string) {
	rw.Error(http.StatusForbidden, message)
}

// NotFound writes a 404 Not Found error.
func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, message)
}

// TooManyRequests writes a 429 Too Many Requests error.
func (rw *ResponseWriter) TooManyRequests(message string) {
	rw.Error(http.StatusTooManyRequests, message)
}

// InternalError writes a 500 Internal Server Error.
func (rw *ResponseWriter) InternalError(message string) {
	rw.Error(http.StatusInternalServerError, message)
}

// writeJSON writes JSON response with proper headers.
func (rw *ResponseWriter) writeJSON(statusCode int, data interface{}) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(data); err != nil {
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteSuccess is a convenience function for writing success responses.
func WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	NewResponseWriter(w, r).Success(data)
}

// WriteError is a convenience function for writing error responses.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	NewResponseWriter(w, r).Error(statusCode, message)
}
