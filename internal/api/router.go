// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/terroir/internal/datasets"
	"github.com/tomtom215/terroir/internal/middleware"
)

// indexPath carries the format suffixes of the root resource.
const indexPath = "/index"

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	catalog       *datasets.Catalog
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil config uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, catalog *datasets.Catalog, cfg *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		catalog:       catalog,
		chiMiddleware: NewChiMiddleware(cfg),
	}
}

// Setup builds the HTTP handler with every route registered.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.Compression))

		registerFormats(r, "/", false, h.Index)
		for _, d := range router.catalog.Datasets() {
			geometry := d.Listing.Geometry != ""
			registerFormats(r, d.Path, geometry, h.List(d))
			registerFormats(r, d.Path+"/{"+keyParam+"}", geometry, h.Show(d))
		}
		registerFormats(r, datasets.PathLocate, true, h.Locate)
		registerFormats(r, datasets.PathNearest, true, h.Nearest)

		r.NotFound(h.NotFound)
	})

	return r
}

// registerFormats registers path and its .json and .csv variants, plus
// .geojson for geometry resources. A path ending in a route parameter is
// registered once; the parameter captures the suffix.
func registerFormats(r chi.Router, path string, geometry bool, h http.HandlerFunc) {
	r.Get(path, h)
	if strings.HasSuffix(path, "}") {
		return
	}

	base := path
	if path == "/" {
		base = indexPath
	}
	r.Get(base+FormatJSON.Suffix(), h)
	r.Get(base+FormatCSV.Suffix(), h)
	if geometry {
		r.Get(base+FormatGeoJSON.Suffix(), h)
	}
}
