// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/terroir/internal/datasets"
	"github.com/tomtom215/terroir/internal/failure"
	"github.com/tomtom215/terroir/internal/hypermedia"
	"github.com/tomtom215/terroir/internal/listing"
	"github.com/tomtom215/terroir/internal/logging"
)

// keyParam names the route parameter of single-resource paths.
const keyParam = "key"

// HealthChecker reports database readiness. *database.DB implements it.
type HealthChecker interface {
	Ping(ctx context.Context) error
	IsSpatialAvailable() bool
	BreakerState() string
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: dataset listings, single resources and point queries
//   - handlers_health.go: liveness and readiness probes
type Handler struct {
	catalog   *datasets.Catalog
	health    HealthChecker
	render    *renderer
	startTime time.Time
}

// NewHandler creates the handler. baseURL is the public origin used for
// "@id"; empty derives it from each request.
func NewHandler(catalog *datasets.Catalog, health HealthChecker, baseURL string) *Handler {
	return &Handler{
		catalog:   catalog,
		health:    health,
		render:    &renderer{baseURL: strings.TrimSuffix(baseURL, "/")},
		startTime: time.Now(),
	}
}

// listingRequest detects the format and parses the page parameter. On a
// malformed page it writes a plain-text 400 and returns false.
func (h *Handler) listingRequest(w http.ResponseWriter, r *http.Request) (Format, listing.Request, bool) {
	format, path := DetectFormat(r.URL.Path)
	req, err := listing.ParseRequest(path, r.URL.Query())
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected listing request")
		h.render.plain(w, err)
		return format, req, false
	}
	return format, req, true
}

// List serves a dataset listing.
func (h *Handler) List(d *datasets.Dataset) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, req, ok := h.listingRequest(w, r)
		if !ok {
			return
		}
		h.render.page(w, r, format, h.catalog.List(r.Context(), d, req))
	}
}

// Show serves one record of a dataset. The format suffix is part of the
// key parameter and is stripped here.
func (h *Handler) Show(d *datasets.Dataset) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, path := DetectFormat(r.URL.Path)
		key, err := url.PathUnescape(strings.TrimSuffix(chi.URLParam(r, keyParam), format.Suffix()))
		if err != nil || key == "" {
			h.render.failure(w, r, format, failure.BadRequest("malformed %s key", d.Slug))
			return
		}

		formats := listing.FormatLinks(path, nil, d.Listing.Geometry != "")
		res, err := h.catalog.Show(r.Context(), d, key)
		h.render.resource(w, r, format, res, formats, err)
	}
}

// Locate lists the cadastral parcels containing the lon/lat point.
func (h *Handler) Locate(w http.ResponseWriter, r *http.Request) {
	format, req, ok := h.listingRequest(w, r)
	if !ok {
		return
	}
	h.render.page(w, r, format, h.catalog.Locate(r.Context(), req))
}

// Nearest lists the weather stations closest to the lon/lat point.
func (h *Handler) Nearest(w http.ResponseWriter, r *http.Request) {
	format, req, ok := h.listingRequest(w, r)
	if !ok {
		return
	}
	h.render.page(w, r, format, h.catalog.Nearest(r.Context(), req))
}

var indexColumns = []hypermedia.Column{
	{Key: "title", Label: "Dataset"},
	{Key: "description", Label: "Description"},
}

// Index lists the datasets.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	format, _ := DetectFormat(r.URL.Path)

	all := h.catalog.Datasets()
	items := make([]hypermedia.Record, len(all))
	for i, d := range all {
		items[i] = hypermedia.Record{
			"title":       hypermedia.Link{Label: "Dataset", Value: d.Title, Href: d.Path},
			"description": hypermedia.Text{Label: "Description", Value: d.Description},
		}
	}

	h.render.page(w, r, format, &listing.PageData{
		Title:       "Terroir",
		Breadcrumbs: []listing.Breadcrumb{{Label: "Home"}},
		Columns:     indexColumns,
		Items:       items,
		Total:       len(items),
		Page:        1,
		Pages:       1,
		Formats: []listing.FormatLink{
			{Format: string(FormatHTML), Href: "/"},
			{Format: string(FormatJSON), Href: indexPath + FormatJSON.Suffix()},
			{Format: string(FormatCSV), Href: indexPath + FormatCSV.Suffix()},
		},
	})
}

// NotFound renders unknown paths in the format their suffix asks for.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	format, _ := DetectFormat(r.URL.Path)
	h.render.failure(w, r, format, failure.NotFound("no resource at %s", r.URL.Path))
}
