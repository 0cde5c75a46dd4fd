// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

// Package config provides layered configuration loading for both GeoPulse
// binaries via Koanf v2: struct defaults, then an optional YAML file, then
// environment variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration shared by the server and tracker binaries.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Tracker  TrackerConfig  `koanf:"tracker"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development", "staging", "production"
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// APIConfig holds API pagination settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds authentication and rate limiting settings.
type SecurityConfig struct {
	// JWTSecret signs bearer tokens. Minimum 32 characters.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTimeout is the token lifetime. Default: 24h.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// BcryptCost is the bcrypt work factor for password hashing.
	BcryptCost int `koanf:"bcrypt_cost"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// TrackerConfig holds the client agent settings: where to send samples, how
// often to capture them, and the retry budget for each send.
type TrackerConfig struct {
	// ServerURL is the base URL of the ingestion API, without the /api/v1
	// prefix (e.g. http://localhost:3000).
	ServerURL string `koanf:"server_url"`

	// Email/Password authenticate the tracker on startup to obtain a bearer
	// token. Token, if set, is used directly instead.
	Email    string `koanf:"email"`
	Password string `koanf:"password"`
	Token    string `koanf:"token"`

	// Interval between location samples. Minimum 1s.
	Interval time.Duration `koanf:"interval"`

	// MinDisplacementMeters suppresses samples that moved less than this
	// distance since the last emitted sample.
	MinDisplacementMeters float64 `koanf:"min_displacement_meters"`

	// MaxAccuracyMeters rejects samples with worse (larger) reported
	// accuracy. MaxSampleAge rejects stale fixes.
	MaxAccuracyMeters float64       `koanf:"max_accuracy_meters"`
	MaxSampleAge      time.Duration `koanf:"max_sample_age"`

	// RequestTimeout bounds each individual send attempt.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// Origin of the simulated location source.
	OriginLatitude  float64 `koanf:"origin_latitude"`
	OriginLongitude float64 `koanf:"origin_longitude"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json or console
	Caller bool   `koanf:"caller"`
}

// Validate checks configuration invariants common to both binaries.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("api.default_page_size must be positive, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must be >= api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("security.session_timeout must be positive")
	}
	if c.Tracker.Interval < time.Second {
		return fmt.Errorf("tracker.interval must be at least 1s, got %s", c.Tracker.Interval)
	}
	if c.Tracker.MinDisplacementMeters < 0 {
		return fmt.Errorf("tracker.min_displacement_meters must not be negative")
	}
	return nil
}

// ValidateServer checks invariants that only the server binary requires.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters (set JWT_SECRET)")
	}
	return nil
}

// ValidateTracker checks invariants that only the tracker binary requires.
func (c *Config) ValidateTracker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Tracker.ServerURL == "" {
		return fmt.Errorf("tracker.server_url is required (set TRACKER_SERVER_URL)")
	}
	if c.Tracker.Token == "" && (c.Tracker.Email == "" || c.Tracker.Password == "") {
		return fmt.Errorf("tracker needs either tracker.token or tracker.email + tracker.password")
	}
	return nil
}
