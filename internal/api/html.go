// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package api

import (
	"embed"
	"html/template"

	"github.com/tomtom215/terroir/internal/datasets"
	"github.com/tomtom215/terroir/internal/failure"
	"github.com/tomtom215/terroir/internal/hypermedia"
	"github.com/tomtom215/terroir/internal/listing"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// templates is parsed once; a parse error is a build defect.
var templates = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

type errorView struct {
	Kind    failure.Kind
	Message string
}

func newErrorView(err error) *errorView {
	if err == nil {
		return nil
	}
	return &errorView{Kind: failure.KindOf(err), Message: failure.MessageOf(err)}
}

// pageView shadows PageData.Err with its public form.
type pageView struct {
	*listing.PageData
	Err *errorView
}

type resourceView struct {
	Title       string
	Breadcrumbs []listing.Breadcrumb
	Formats     []listing.FormatLink
	Columns     []hypermedia.Column
	Record      hypermedia.Record
	Err         *errorView
}

func newResourceView(res *datasets.Resource, formats []listing.FormatLink, err error) resourceView {
	if err != nil {
		return resourceView{
			Title:       string(failure.KindOf(err)),
			Breadcrumbs: []listing.Breadcrumb{{Label: "Home", Href: "/"}},
			Formats:     formats,
			Err:         newErrorView(err),
		}
	}
	return resourceView{
		Title:       res.Title,
		Breadcrumbs: res.Breadcrumbs,
		Formats:     formats,
		Columns:     res.Columns,
		Record:      res.Record,
	}
}
