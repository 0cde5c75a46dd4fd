// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package services

import (
	"context"
	"time"

	"github.com/paulkiren/geopulse/internal/metrics"
	"github.com/paulkiren/geopulse/internal/store"
)

// GaugeService periodically refreshes the store size gauges so Prometheus
// scrapes reflect current counts rather than write-path side effects.
type GaugeService struct {
	users     *store.UserStore
	locations *store.LocationStore
	interval  time.Duration
	name      string
}

// NewGaugeService creates a gauge refresher.
func NewGaugeService(users *store.UserStore, locations *store.LocationStore, interval time.Duration) *GaugeService {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &GaugeService{
		users:     users,
		locations: locations,
		interval:  interval,
		name:      "store-gauges",
	}
}

// Serve implements suture.Service.
func (g *GaugeService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	g.refresh()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			g.refresh()
		}
	}
}

func (g *GaugeService) refresh() {
	metrics.UpdateStoreGauges(g.users.Count(), g.locations.Count())
}

// String implements fmt.Stringer; suture uses it in log messages.
func (g *GaugeService) String() string {
	return g.name
}
