// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package tracking

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// StatusError reports a non-2xx answer from the ingestion API. The server
// made a decision, so the caller must not retry the same request.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Code)
}

// ClientConfig configures the ingestion API client.
type ClientConfig struct {
	// ServerURL is the base URL of the ingestion API.
	ServerURL string

	// Token is a pre-issued bearer token. When empty, Login must be
	// called before posting.
	Token string

	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration
}

// Client talks to the ingestion API. It implements Poster.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates an ingestion API client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   cfg.Token,
	}
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token, e.g. after a refresh.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Login authenticates with email and password and stores the session
// token for subsequent posts.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("failed to encode login request: %w", err)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/api/v1/auth/login", body, false, &result); err != nil {
		return err
	}
	if result.Token == "" {
		return fmt.Errorf("login response missing token")
	}

	c.SetToken(result.Token)
	return nil
}

// Post uploads a single sample. Implements Poster.
func (c *Client) Post(ctx context.Context, sample Sample) error {
	body, err := json.Marshal(map[string]interface{}{
		"latitude":  sample.Latitude,
		"longitude": sample.Longitude,
		"accuracy":  sample.Accuracy,
	})
	if err != nil {
		return fmt.Errorf("failed to encode sample: %w", err)
	}

	return c.post(ctx, "/api/v1/locations", body, true, nil)
}

// post issues an authenticated JSON POST and decodes the envelope's data
// field into result when non-nil.
func (c *Client) post(ctx context.Context, path string, body []byte, authed bool, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		token := c.Token()
		if token == "" {
			return fmt.Errorf("no session token, call Login first")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, Message: envelope.Error}
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}

	if result != nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, result); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
