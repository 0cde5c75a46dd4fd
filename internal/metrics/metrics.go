// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - API endpoint latency and throughput
// - Authentication outcomes
// - In-memory store sizes
// - Tracker upload attempts and outcomes
// - Tracking controller state

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Authentication Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"operation", "result"}, // operation: "register", "login"; result: "success", "failure"
	)

	// Store Metrics
	StoreUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_users",
			Help: "Current number of registered users",
		},
	)

	StoreLocations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_locations",
			Help: "Current number of stored location records",
		},
	)

	// Tracker Upload Metrics
	TrackerSendAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_send_attempts_total",
			Help: "Total number of location upload attempts, including retries",
		},
	)

	TrackerSendOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_send_outcomes_total",
			Help: "Total number of terminal upload outcomes",
		},
		[]string{"result"}, // "success", "error"
	)

	TrackerSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tracker_send_duration_seconds",
			Help:    "Duration of a full upload cycle including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
	)

	TrackerSamplesDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_samples_discarded_total",
			Help: "Total number of samples discarded before upload",
		},
		[]string{"reason"}, // "accuracy", "stale"
	)

	// Controller Metrics
	ControllerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracker_controller_state",
			Help: "Tracking controller state (0=stopped, 1=active, 2=location_unavailable, 3=permission_denied)",
		},
	)

	ControllerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_controller_transitions_total",
			Help: "Total number of controller state transitions",
		},
		[]string{"from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAuthAttempt records a registration or login outcome
func RecordAuthAttempt(operation string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	AuthAttempts.WithLabelValues(operation, result).Inc()
}

// UpdateStoreGauges refreshes the store size gauges
func UpdateStoreGauges(users, locations int) {
	StoreUsers.Set(float64(users))
	StoreLocations.Set(float64(locations))
}

// RecordSendOutcome records a terminal upload outcome and its total duration
func RecordSendOutcome(success bool, duration time.Duration) {
	result := "error"
	if success {
		result = "success"
	}
	TrackerSendOutcomes.WithLabelValues(result).Inc()
	TrackerSendDuration.Observe(duration.Seconds())
}

// RecordControllerTransition records a controller state change
func RecordControllerTransition(from, to string, toValue float64) {
	ControllerTransitions.WithLabelValues(from, to).Inc()
	ControllerState.Set(toValue)
}
