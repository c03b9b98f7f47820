// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"context"
	"net/http"
	"time"
)

// Health check labels shown in the UI.
const (
	StatusNotChecked   = "Not checked"
	StatusValid        = "Valid"
	StatusMissing      = "Missing"
	StatusConnected    = "Connected"
	StatusDisconnected = "Disconnected"
)

// HealthTimeout bounds a single connectivity check.
const HealthTimeout = 5 * time.Second

// HealthStatus describes the key and endpoint state.
type HealthStatus struct {
	KeyStatus        string
	ConnectionStatus string
	StatusCode       int
	Latency          time.Duration
	Err              error
	CheckedAt        time.Time
}

// Check reports whether a key is configured and whether the endpoint answers
// at all. Any HTTP response, whatever its status, counts as connected; only
// transport failures mark the endpoint disconnected.
func (c *Client) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		KeyStatus:        StatusValid,
		ConnectionStatus: StatusDisconnected,
		CheckedAt:        time.Now(),
	}
	if c.apiKey == "" {
		status.KeyStatus = StatusMissing
	}

	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		status.Err = err
		return status
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	status.Latency = time.Since(start)
	if err != nil {
		c.logger.Warn("health check failed", "err", err)
		status.Err = err
		return status
	}
	resp.Body.Close()

	status.StatusCode = resp.StatusCode
	status.ConnectionStatus = StatusConnected
	c.logger.Debug("health check", "status", resp.StatusCode, "latency", status.Latency)
	return status
}
