// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package api

import "strings"

// Format is a response representation.
type Format string

const (
	FormatHTML    Format = "html"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatGeoJSON Format = "geojson"
)

// suffixed lists the formats selected by a path suffix, longest suffix first.
var suffixed = []Format{FormatGeoJSON, FormatJSON, FormatCSV}

// Suffix returns the path suffix selecting f, empty for HTML.
func (f Format) Suffix() string {
	if f == FormatHTML {
		return ""
	}
	return "." + string(f)
}

// ContentType returns the media type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatGeoJSON:
		return "application/geo+json"
	default:
		return "text/html; charset=utf-8"
	}
}

// DetectFormat returns the format selected by the suffix of path and the
// path with that suffix removed. Paths without a known suffix are HTML.
func DetectFormat(path string) (Format, string) {
	for _, f := range suffixed {
		if trimmed, ok := strings.CutSuffix(path, f.Suffix()); ok && trimmed != "" && !strings.HasSuffix(trimmed, "/") {
			return f, trimmed
		}
	}
	return FormatHTML, path
}
