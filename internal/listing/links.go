// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package listing

import (
	"net/url"
)

// TotalPages returns the number of pages needed for total rows.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// WindowBounds returns the first and last page numbers of the window around
// page out of pages. The window is empty (first > last) when pages is 0.
func WindowBounds(page, pages int) (first, last int) {
	return max(0, page-windowRadius) + 1, min(pages, page+windowRadius)
}

// pageHref links to page of the same listing, keeping the other parameters.
func pageHref(path string, values url.Values, page int) string {
	q := make(url.Values, len(values)+1)
	for k, v := range values {
		q[k] = v
	}
	q.Set("page", itoa(page))
	return path + "?" + q.Encode()
}

func navigation(path string, values url.Values, page, pages int) Links {
	var links Links
	if page > 1 {
		links.First = pageHref(path, values, 1)
		links.Previous = pageHref(path, values, page-1)
	}
	if page < pages {
		links.Next = pageHref(path, values, page+1)
		links.Last = pageHref(path, values, pages)
	}
	return links
}

func window(path string, values url.Values, page, pages int) []PageLink {
	first, last := WindowBounds(page, pages)
	if first > last {
		return []PageLink{}
	}
	links := make([]PageLink, 0, last-first+1)
	for n := first; n <= last; n++ {
		links = append(links, PageLink{Number: n, Href: pageHref(path, values, n), Current: n == page})
	}
	return links
}

// FormatLinks returns the self-links of path in every representation,
// preserving the query string.
func FormatLinks(path string, values url.Values, geometry bool) []FormatLink {
	suffix := ""
	if encoded := values.Encode(); encoded != "" {
		suffix = "?" + encoded
	}

	links := []FormatLink{
		{Format: "html", Href: path + suffix},
		{Format: "json", Href: path + ".json" + suffix},
		{Format: "csv", Href: path + ".csv" + suffix},
	}
	if geometry {
		links = append(links, FormatLink{Format: "geojson", Href: path + ".geojson" + suffix})
	}
	return links
}
