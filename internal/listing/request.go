// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package listing

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/terroir/internal/failure"
)

// Request is a parsed listing request.
type Request struct {
	// Path is the resource path without format suffix.
	Path  string
	Query url.Values
	Page  int
}

// MaxPage bounds the page parameter so the offset of any configured page
// size fits a 64-bit integer.
const MaxPage = math.MaxInt32

// ParseRequest validates the page parameter. A missing page is page 1; a
// non-numeric, non-positive or larger than MaxPage page is a BadRequest.
func ParseRequest(path string, values url.Values) (Request, error) {
	if values == nil {
		values = url.Values{}
	}
	page := 1
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPage {
			return Request{}, failure.BadRequest("page must be a positive integer, got %q", raw)
		}
		page = n
	}
	return Request{Path: path, Query: values, Page: page}, nil
}
