// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package api

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/tomtom215/terroir/internal/datasets"
	"github.com/tomtom215/terroir/internal/failure"
	"github.com/tomtom215/terroir/internal/hypermedia"
	"github.com/tomtom215/terroir/internal/listing"
	"github.com/tomtom215/terroir/internal/logging"
	"github.com/tomtom215/terroir/internal/metrics"
)

// renderer turns page data, resources and errors into responses.
type renderer struct {
	baseURL string
}

// selfURL is the "@id" of a response: the configured public origin, or the
// origin the request arrived on, followed by the request URI.
func (rd *renderer) selfURL(r *http.Request) string {
	if rd.baseURL != "" {
		return rd.baseURL + r.URL.RequestURI()
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return (&url.URL{Scheme: scheme, Host: r.Host}).String() + r.URL.RequestURI()
}

func (rd *renderer) page(w http.ResponseWriter, r *http.Request, format Format, data *listing.PageData) {
	metrics.RecordFormat(string(format))

	switch format {
	case FormatJSON:
		status, body, err := hypermedia.EncodeJSON(rd.selfURL(r), data.Document())
		rd.write(w, r, status, format, body, err)

	case FormatCSV:
		if data.Failed() {
			rd.plain(w, data.Err)
			return
		}
		rd.write(w, r, http.StatusOK, format, []byte(hypermedia.EncodeCSV(data.Table())), nil)

	case FormatGeoJSON:
		if data.Failed() {
			rd.failure(w, r, FormatJSON, data.Err)
			return
		}
		fc := data.Features
		if fc == nil {
			fc = &geojson.FeatureCollection{Features: []*geojson.Feature{}}
		}
		body, err := json.Marshal(fc)
		rd.write(w, r, http.StatusOK, format, body, err)

	default:
		status := http.StatusOK
		if data.Failed() {
			status = failure.StatusOf(data.Err)
		}
		rd.html(w, r, status, "page", pageView{PageData: data, Err: newErrorView(data.Err)})
	}
}

func (rd *renderer) resource(w http.ResponseWriter, r *http.Request, format Format, res *datasets.Resource, formats []listing.FormatLink, err error) {
	if err != nil {
		if format == FormatHTML {
			metrics.RecordFormat(string(format))
			rd.html(w, r, failure.StatusOf(err), "resource", newResourceView(nil, formats, err))
			return
		}
		rd.failure(w, r, format, err)
		return
	}

	metrics.RecordFormat(string(format))
	switch format {
	case FormatJSON:
		doc := res.Document()
		doc["formats"] = formats
		status, body, encErr := hypermedia.EncodeJSON(rd.selfURL(r), doc)
		rd.write(w, r, status, format, body, encErr)

	case FormatCSV:
		rd.write(w, r, http.StatusOK, format, []byte(hypermedia.EncodeCSV(res.Table())), nil)

	case FormatGeoJSON:
		if res.Geometry == nil {
			rd.failure(w, r, FormatJSON, failure.NotFound("%s has no geometry", res.Title))
			return
		}
		body, encErr := geojson.Marshal(res.Geometry)
		rd.write(w, r, http.StatusOK, format, body, encErr)

	default:
		rd.html(w, r, http.StatusOK, "resource", newResourceView(res, formats, nil))
	}
}

// failure renders a top-level error with its mapped status.
func (rd *renderer) failure(w http.ResponseWriter, r *http.Request, format Format, err error) {
	metrics.RecordFormat(string(format))
	switch format {
	case FormatJSON, FormatGeoJSON:
		status, body, encErr := hypermedia.EncodeJSON(rd.selfURL(r), err)
		rd.write(w, r, status, FormatJSON, body, encErr)
	case FormatCSV:
		rd.plain(w, err)
	default:
		rd.html(w, r, failure.StatusOf(err), "resource", newResourceView(nil, nil, err))
	}
}

// plain writes the error message as text/plain with its mapped status.
func (rd *renderer) plain(w http.ResponseWriter, err error) {
	status, msg := hypermedia.EncodeCSVError(err)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func (rd *renderer) html(w http.ResponseWriter, r *http.Request, status int, name string, view any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, view); err != nil {
		rd.write(w, r, http.StatusInternalServerError, FormatHTML, nil, err)
		return
	}
	rd.write(w, r, status, FormatHTML, buf.Bytes(), nil)
}

func (rd *renderer) write(w http.ResponseWriter, r *http.Request, status int, format Format, body []byte, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Str("format", string(format)).
			Msg("Failed to encode response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
