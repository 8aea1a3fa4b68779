// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// readyTimeout bounds the readiness ping.
const readyTimeout = 2 * time.Second

// HealthLive reports that the process is serving requests, regardless of
// the database.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.writeHealth(w, r, http.StatusOK, map[string]any{
		"status": "alive",
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports 200 when the database answers a ping and the query
// breaker is closed, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		h.writeHealth(w, r, http.StatusServiceUnavailable, map[string]any{"status": "not_ready", "database": "unconfigured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := http.StatusOK
	body := map[string]any{
		"status":   "ready",
		"database": "connected",
		"spatial":  h.health.IsSpatialAvailable(),
		"breaker":  h.health.BreakerState(),
	}
	if err := h.health.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "not_ready"
		body["database"] = "unreachable"
	} else if h.health.BreakerState() == "open" {
		status = http.StatusServiceUnavailable
		body["status"] = "not_ready"
	}
	h.writeHealth(w, r, status, body)
}

func (h *Handler) writeHealth(w http.ResponseWriter, r *http.Request, status int, body map[string]any) {
	raw, err := json.Marshal(body)
	h.render.write(w, r, status, FormatJSON, raw, err)
}
