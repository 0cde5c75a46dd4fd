// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package tracking

import (
	"context"
	"errors"
	"time"

	"github.com/paulkiren/geopulse/internal/logging"
	"github.com/paulkiren/geopulse/internal/metrics"
)

// State is the phase of an upload cycle.
type State int

const (
	// StateLoading is emitted once, before the first attempt.
	StateLoading State = iota

	// StateSuccess means a sample was accepted by the server.
	StateSuccess

	// StateError means the cycle ended without the server accepting
	// the sample.
	StateError
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is a progress event of an upload cycle. A cycle emits exactly
// one StateLoading followed by exactly one terminal outcome.
type Outcome struct {
	State State
	// Err is the last error observed; set only for StateError.
	Err error
	// Attempts is how many upload attempts were made.
	Attempts int
}

// Poster uploads a single sample. Transport failures are returned as-is;
// server rejections must be returned as *StatusError.
type Poster interface {
	Post(ctx context.Context, sample Sample) error
}

// SenderConfig tunes the retry behavior of a Sender.
type SenderConfig struct {
	// MaxAttempts is the total number of upload attempts per cycle.
	MaxAttempts int

	// RetryDelays are the waits before each retry: RetryDelays[0]
	// before the second attempt, and so on. The last entry repeats if
	// there are more retries than entries.
	RetryDelays []time.Duration
}

// DefaultSenderConfig returns the production retry schedule: three
// attempts with growing backoff between them.
func DefaultSenderConfig() SenderConfig {
	return SenderConfig{
		MaxAttempts: 3,
		RetryDelays: []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second},
	}
}

// Sender uploads samples with bounded retries.
//
// Only transport-level failures are retried. A *StatusError means the
// server received and judged the request, so retrying would not change
// the answer; those end the cycle immediately.
type Sender struct {
	poster Poster
	cfg    SenderConfig
}

// NewSender creates a sender with the default retry schedule.
func NewSender(poster Poster) *Sender {
	return NewSenderWithConfig(poster, DefaultSenderConfig())
}

// NewSenderWithConfig creates a sender with a custom retry schedule.
func NewSenderWithConfig(poster Poster, cfg SenderConfig) *Sender {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Sender{poster: poster, cfg: cfg}
}

// Send starts an upload cycle for the sample. The returned channel emits
// StateLoading, then exactly one terminal outcome, and is then closed.
// Cancelling ctx ends the cycle with StateError.
func (s *Sender) Send(ctx context.Context, sample Sample) <-chan Outcome {
	out := make(chan Outcome, 2)

	go func() {
		defer close(out)

		out <- Outcome{State: StateLoading}
		start := time.Now()

		outcome := s.run(ctx, sample)
		metrics.RecordSendOutcome(outcome.State == StateSuccess, time.Since(start))
		out <- outcome
	}()

	return out
}

// run executes the attempt loop and returns the terminal outcome.
func (s *Sender) run(ctx context.Context, sample Sample) Outcome {
	var lastErr error

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := s.wait(ctx, s.retryDelay(attempt)); err != nil {
				return Outcome{State: StateError, Err: err, Attempts: attempt - 1}
			}
		}

		metrics.TrackerSendAttempts.Inc()
		err := s.poster.Post(ctx, sample)
		if err == nil {
			logging.Debug().
				Int("attempt", attempt).
				Float64("latitude", sample.Latitude).
				Float64("longitude", sample.Longitude).
				Msg("Sample uploaded")
			return Outcome{State: StateSuccess, Attempts: attempt}
		}

		lastErr = err

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			// The server answered; its verdict will not change on retry.
			logging.Warn().
				Int("attempt", attempt).
				Int("status", statusErr.Code).
				Msg("Upload rejected by server")
			return Outcome{State: StateError, Err: err, Attempts: attempt}
		}
		if ctx.Err() != nil {
			return Outcome{State: StateError, Err: ctx.Err(), Attempts: attempt}
		}

		logging.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", s.cfg.MaxAttempts).
			Msg("Upload attempt failed")
	}

	return Outcome{State: StateError, Err: lastErr, Attempts: s.cfg.MaxAttempts}
}

// retryDelay returns the wait before the given attempt (attempt >= 2).
func (s *Sender) retryDelay(attempt int) time.Duration {
	if len(s.cfg.RetryDelays) == 0 {
		return 0
	}
	idx := attempt - 2
	if idx >= len(s.cfg.RetryDelays) {
		idx = len(s.cfg.RetryDelays) - 1
	}
	return s.cfg.RetryDelays[idx]
}

// wait sleeps for d or until ctx is cancelled.
func (s *Sender) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
