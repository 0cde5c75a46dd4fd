// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package geo

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/paulkiren/geopulse/internal/logging"
	"github.com/paulkiren/geopulse/internal/tracking"
)

// SimulatedSourceConfig configures the random-walk source.
type SimulatedSourceConfig struct {
	// OriginLatitude and OriginLongitude anchor the walk.
	OriginLatitude  float64
	OriginLongitude float64

	// MaxStepMeters bounds a single movement.
	MaxStepMeters float64

	// AccuracyMeters is the best accuracy the source reports; each fix
	// jitters upward from it.
	AccuracyMeters float64

	// UnavailableEvery injects a short availability dropout after this
	// many fixes. Zero disables dropouts.
	UnavailableEvery int

	// Seed makes the walk reproducible. Zero seeds from the clock.
	Seed int64
}

// DefaultSimulatedSourceConfig returns a walk around central Berlin.
func DefaultSimulatedSourceConfig() SimulatedSourceConfig {
	return SimulatedSourceConfig{
		OriginLatitude:  52.520008,
		OriginLongitude: 13.404954,
		MaxStepMeters:   25,
		AccuracyMeters:  5,
	}
}

// SimulatedSource produces location fixes by random-walking from an
// origin point. It implements tracking.Source and honors the requested
// interval and minimum displacement.
type SimulatedSource struct {
	cfg SimulatedSourceConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedSource creates a random-walk source.
func NewSimulatedSource(cfg SimulatedSourceConfig) *SimulatedSource {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.MaxStepMeters <= 0 {
		cfg.MaxStepMeters = DefaultSimulatedSourceConfig().MaxStepMeters
	}
	if cfg.AccuracyMeters <= 0 {
		cfg.AccuracyMeters = DefaultSimulatedSourceConfig().AccuracyMeters
	}
	return &SimulatedSource{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Subscribe starts the walk. The returned channel closes when ctx is
// cancelled.
func (s *SimulatedSource) Subscribe(ctx context.Context, opts tracking.Options) (<-chan tracking.Update, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second
	}

	updates := make(chan tracking.Update, 8)
	go s.walk(ctx, interval, opts.MinDisplacement, updates)
	return updates, nil
}

func (s *SimulatedSource) walk(ctx context.Context, interval time.Duration, minDisplacement float64, updates chan<- tracking.Update) {
	defer close(updates)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lat := s.cfg.OriginLatitude
	lng := s.cfg.OriginLongitude
	lastLat, lastLng := lat, lng
	fixes := 0
	emittedFirst := false
	unavailable := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		lat, lng = s.step(lat, lng)
		fixes++

		if s.cfg.UnavailableEvery > 0 && fixes%s.cfg.UnavailableEvery == 0 {
			unavailable = true
			select {
			case updates <- tracking.Update{Kind: tracking.UpdateUnavailable}:
			case <-ctx.Done():
				return
			}
			continue
		}
		if unavailable {
			unavailable = false
			select {
			case updates <- tracking.Update{Kind: tracking.UpdateAvailable}:
			case <-ctx.Done():
				return
			}
		}

		// The first fix always goes out; after that the walk stays
		// quiet until it has moved far enough.
		if emittedFirst && minDisplacement > 0 {
			if DistanceMeters(lastLat, lastLng, lat, lng) < minDisplacement {
				continue
			}
		}
		emittedFirst = true
		lastLat, lastLng = lat, lng

		sample := tracking.Sample{
			Latitude:  lat,
			Longitude: lng,
			Accuracy:  s.accuracy(),
			Timestamp: time.Now().UTC(),
		}
		select {
		case updates <- tracking.Update{Kind: tracking.UpdateSample, Sample: sample}:
		case <-ctx.Done():
			return
		}
	}
}

// step moves the walk by a random bearing and distance.
func (s *SimulatedSource) step(lat, lng float64) (float64, float64) {
	s.mu.Lock()
	angle := s.rng.Float64() * 2 * math.Pi
	magnitude := s.rng.Float64() * s.cfg.MaxStepMeters
	s.mu.Unlock()

	dNorth := magnitude * math.Cos(angle)
	dEast := magnitude * math.Sin(angle)

	// Meters to degrees; longitude scale shrinks with latitude.
	newLat := lat + dNorth/earthRadiusMeters*(180.0/math.Pi)
	newLng := lng + dEast/(earthRadiusMeters*math.Cos(lat*math.Pi/180.0))*(180.0/math.Pi)

	if newLat > 90 || newLat < -90 {
		newLat = lat
	}
	if newLng > 180 {
		newLng -= 360
	} else if newLng < -180 {
		newLng += 360
	}
	return newLat, newLng
}

// accuracy jitters the reported accuracy upward from the configured base.
func (s *SimulatedSource) accuracy() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.AccuracyMeters + s.rng.Float64()*10
}

// LogWalkOrigin records where the simulation starts.
func (s *SimulatedSource) LogWalkOrigin() {
	logging.Info().
		Float64("latitude", s.cfg.OriginLatitude).
		Float64("longitude", s.cfg.OriginLongitude).
		Msg("Simulated walk origin")
}
