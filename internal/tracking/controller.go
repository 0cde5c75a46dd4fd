// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paulkiren/geopulse/internal/logging"
	"github.com/paulkiren/geopulse/internal/metrics"
)

// TrackingState is the controller's externally visible lifecycle state.
type TrackingState int

const (
	// TrackingStopped means tracking is off.
	TrackingStopped TrackingState = iota

	// TrackingActive means the source is delivering usable samples.
	TrackingActive

	// TrackingLocationUnavailable means tracking is on but the source
	// cannot currently produce a fix.
	TrackingLocationUnavailable

	// TrackingPermissionDenied means location permission is missing or
	// was revoked. The controller will not leave this state on its own.
	TrackingPermissionDenied
)

func (s TrackingState) String() string {
	switch s {
	case TrackingStopped:
		return "stopped"
	case TrackingActive:
		return "active"
	case TrackingLocationUnavailable:
		return "location_unavailable"
	case TrackingPermissionDenied:
		return "permission_denied"
	default:
		return "unknown"
	}
}

// ControllerConfig tunes the tracking controller.
type ControllerConfig struct {
	// Interval is the requested delivery cadence of the source.
	Interval time.Duration

	// MinDisplacementMeters suppresses source updates for movements
	// smaller than this.
	MinDisplacementMeters float64

	// MaxAccuracyMeters rejects samples with a worse (larger) reported
	// accuracy.
	MaxAccuracyMeters float64

	// MaxSampleAge rejects samples older than this.
	MaxSampleAge time.Duration
}

// DefaultControllerConfig returns the production gate settings.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Interval:              10 * time.Second,
		MinDisplacementMeters: 10,
		MaxAccuracyMeters:     100,
		MaxSampleAge:          5 * time.Minute,
	}
}

// Controller drives a location Source, filters its samples and hands the
// accepted ones to a Sender. Network failures are reported through send
// outcomes and never change the tracking state; only source availability
// and permissions do.
type Controller struct {
	source      Source
	permissions Permissions
	sender      *Sender
	cfg         ControllerConfig

	mu         sync.Mutex
	state      TrackingState
	cancel     context.CancelFunc
	sendCtx    context.Context
	sendCancel context.CancelFunc
	done       chan struct{}
	lastSample *Sample
	sentCount  int64
}

// Status is a point-in-time snapshot of the controller.
type Status struct {
	State      TrackingState
	Interval   time.Duration
	LastSample *Sample
	SentCount  int64
}

// NewController creates a stopped controller.
func NewController(source Source, permissions Permissions, sender *Sender, cfg ControllerConfig) *Controller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultControllerConfig().Interval
	}
	if cfg.MaxAccuracyMeters <= 0 {
		cfg.MaxAccuracyMeters = DefaultControllerConfig().MaxAccuracyMeters
	}
	if cfg.MaxSampleAge <= 0 {
		cfg.MaxSampleAge = DefaultControllerConfig().MaxSampleAge
	}
	return &Controller{
		source:      source,
		permissions: permissions,
		sender:      sender,
		cfg:         cfg,
		state:       TrackingStopped,
	}
}

// State returns the current tracking state.
func (c *Controller) State() TrackingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns a snapshot of the controller's session.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	var last *Sample
	if c.lastSample != nil {
		cp := *c.lastSample
		last = &cp
	}
	return Status{
		State:      c.state,
		Interval:   c.cfg.Interval,
		LastSample: last,
		SentCount:  c.sentCount,
	}
}

// Start begins tracking. It is a no-op when tracking is already running.
// When permission is missing the controller enters TrackingPermissionDenied
// and returns an error.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != TrackingStopped && c.state != TrackingPermissionDenied {
		return nil
	}

	if !c.permissions.Granted() {
		c.transitionLocked(TrackingPermissionDenied)
		return fmt.Errorf("location permission not granted")
	}

	runCtx, cancel := context.WithCancel(ctx)
	updates, err := c.source.Subscribe(runCtx, Options{
		Interval:        c.cfg.Interval,
		MinDisplacement: c.cfg.MinDisplacementMeters,
	})
	if err != nil {
		cancel()
		c.transitionLocked(TrackingLocationUnavailable)
		return fmt.Errorf("failed to subscribe to location source: %w", err)
	}

	// Sends outlive individual updates, so they get their own context
	// that Stop cancels separately from the subscription.
	sendCtx, sendCancel := context.WithCancel(context.Background())

	c.cancel = cancel
	c.sendCtx = sendCtx
	c.sendCancel = sendCancel
	c.done = make(chan struct{})
	c.transitionLocked(TrackingActive)

	go c.loop(updates, c.done)

	logging.Info().
		Dur("interval", c.cfg.Interval).
		Float64("min_displacement_m", c.cfg.MinDisplacementMeters).
		Msg("Tracking started")
	return nil
}

// Stop ends tracking, cancels the subscription and any in-flight sends,
// and waits for the update loop to drain.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == TrackingStopped {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	sendCancel := c.sendCancel
	done := c.done
	c.cancel = nil
	c.sendCancel = nil
	c.done = nil
	c.lastSample = nil
	c.sentCount = 0
	c.transitionLocked(TrackingStopped)
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sendCancel != nil {
		sendCancel()
	}
	if done != nil {
		<-done
	}

	logging.Info().Msg("Tracking stopped")
}

// loop consumes source updates until the subscription channel closes.
func (c *Controller) loop(updates <-chan Update, done chan struct{}) {
	defer close(done)

	for update := range updates {
		switch update.Kind {
		case UpdateSample:
			c.handleSample(update.Sample)
		case UpdateUnavailable:
			c.setRunningState(TrackingLocationUnavailable)
		case UpdateAvailable:
			c.setRunningState(TrackingActive)
		case UpdatePermissionLost:
			// Permission loss is fatal: tear down the subscription and
			// stay in TrackingPermissionDenied until the next Start.
			c.mu.Lock()
			cancel := c.cancel
			sendCancel := c.sendCancel
			c.cancel = nil
			c.sendCancel = nil
			c.done = nil
			c.transitionLocked(TrackingPermissionDenied)
			c.mu.Unlock()

			if cancel != nil {
				cancel()
			}
			if sendCancel != nil {
				sendCancel()
			}
			logging.Warn().Msg("Location permission lost, tracking halted")
		}
	}
}

// handleSample applies the quality gate and forwards accepted samples.
// A sample that passes the gate recovers the session from
// location-unavailable; samples arriving while tracking is not running
// are dropped.
func (c *Controller) handleSample(sample Sample) {
	if sample.Accuracy >= c.cfg.MaxAccuracyMeters {
		metrics.TrackerSamplesDiscarded.WithLabelValues("accuracy").Inc()
		logging.Debug().
			Float64("accuracy", sample.Accuracy).
			Float64("max_accuracy", c.cfg.MaxAccuracyMeters).
			Msg("Sample discarded, accuracy too coarse")
		return
	}
	if age := time.Since(sample.Timestamp); age >= c.cfg.MaxSampleAge {
		metrics.TrackerSamplesDiscarded.WithLabelValues("age").Inc()
		logging.Debug().
			Dur("age", age).
			Msg("Sample discarded, fix too old")
		return
	}

	c.mu.Lock()
	if c.state != TrackingActive && c.state != TrackingLocationUnavailable {
		c.mu.Unlock()
		metrics.TrackerSamplesDiscarded.WithLabelValues("state").Inc()
		return
	}
	// A usable fix means the source is back: recover the session before
	// forwarding.
	c.transitionLocked(TrackingActive)
	sendCtx := c.sendCtx
	if sendCtx == nil {
		c.mu.Unlock()
		return
	}
	cp := sample
	c.lastSample = &cp
	c.sentCount++
	c.mu.Unlock()

	// Sends overlap rather than queue: a slow retry cycle must not hold
	// up fresher samples. Failures are logged by the sender and do not
	// affect the tracking state.
	go func() {
		for range c.sender.Send(sendCtx, sample) {
		}
	}()
}

// setRunningState flips between active and unavailable while tracking is
// running. Stopped and permission-denied are sticky.
func (c *Controller) setRunningState(next TrackingState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != TrackingActive && c.state != TrackingLocationUnavailable {
		return
	}
	c.transitionLocked(next)
}

// transitionLocked records a state change. Callers hold c.mu.
func (c *Controller) transitionLocked(next TrackingState) {
	if c.state == next {
		return
	}
	prev := c.state
	c.state = next
	metrics.RecordControllerTransition(prev.String(), next.String(), float64(next))
	logging.Info().
		Str("from", prev.String()).
		Str("to", next.String()).
		Msg("Tracking state changed")
}
