// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

// Package tracking implements the client-side location pipeline: a
// positioning source feeds samples to a controller, which gates them and
// hands them to a retrying sender for upload.
package tracking

import (
	"context"
	"time"
)

// Sample is a single position fix from a location source.
type Sample struct {
	Latitude  float64
	Longitude float64
	// Accuracy is the estimated error radius in meters.
	Accuracy float64
	// Timestamp is when the fix was taken, not when it was delivered.
	Timestamp time.Time
}

// UpdateKind discriminates the events a source can deliver.
type UpdateKind int

const (
	// UpdateSample carries a new position fix.
	UpdateSample UpdateKind = iota

	// UpdateUnavailable signals that positioning is temporarily lost
	// (no fix can be produced right now).
	UpdateUnavailable

	// UpdateAvailable signals that positioning has recovered.
	UpdateAvailable

	// UpdatePermissionLost signals that the source may no longer
	// produce fixes at all. This is terminal for a tracking session.
	UpdatePermissionLost
)

// Update is an event from a location source.
type Update struct {
	Kind   UpdateKind
	Sample Sample // set when Kind == UpdateSample
}

// Options configures a source subscription.
type Options struct {
	// Interval is the requested time between fixes.
	Interval time.Duration

	// MinDisplacement is the minimum movement in meters before a new
	// fix is delivered. Fixes closer than this to the previously
	// delivered one are suppressed by the source.
	MinDisplacement float64
}

// Source produces position updates. Subscribe returns a channel that is
// closed when ctx is cancelled.
type Source interface {
	Subscribe(ctx context.Context, opts Options) (<-chan Update, error)
}

// Permissions reports whether the process is allowed to read positions.
type Permissions interface {
	Granted() bool
}

// GrantedPermissions is a Permissions implementation that always allows
// tracking. Useful for headless deployments and tests.
type GrantedPermissions struct{}

// Granted implements Permissions.
func (GrantedPermissions) Granted() bool { return true }
