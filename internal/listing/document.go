// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package listing

import (
	"github.com/tomtom215/terroir/internal/hypermedia"
)

// Result is the table part of a successful page.
type Result struct {
	Columns []hypermedia.Column `json:"columns"`
	Items   []hypermedia.Record `json:"items"`
	Total   int                 `json:"total"`
	Page    int                 `json:"page"`
	Pages   int                 `json:"pages"`
	Credit  hypermedia.Record   `json:"credit,omitempty"`
	Links   Links               `json:"links"`
	Window  []PageLink          `json:"window"`
}

// Document returns the JSON form of the page. A degraded page carries its
// error as the result member.
func (p *PageData) Document() hypermedia.Document {
	doc := hypermedia.Document{
		"@type":       "Page",
		"title":       p.Title,
		"breadcrumbs": p.Breadcrumbs,
		"form":        p.Form,
		"formats":     p.Formats,
	}
	if p.Err != nil {
		doc[hypermedia.ResultKey] = p.Err
		return doc
	}
	doc[hypermedia.ResultKey] = Result{
		Columns: p.Columns,
		Items:   p.Items,
		Total:   p.Total,
		Page:    p.Page,
		Pages:   p.Pages,
		Credit:  p.Credit,
		Links:   p.Links,
		Window:  p.Window,
	}
	return doc
}

// Table returns the CSV projection of the page.
func (p *PageData) Table() hypermedia.Table {
	return hypermedia.Table{Columns: p.Columns, Rows: p.Items}
}
