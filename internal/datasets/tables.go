// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package datasets

import "github.com/tomtom215/terroir/internal/database/query"

// Table definitions of the reference database.
var (
	Municipalities = query.Table{
		Name:       "municipalities",
		PrimaryKey: "code",
		Geometries: []string{"contour"},
	}

	Parcels = query.Table{
		Name:       "parcels",
		PrimaryKey: "id",
		Joins: []query.Join{{
			Field:   "municipality",
			Table:   Municipalities,
			Columns: []string{"name", "department"},
		}},
		Geometries: []string{"geometry"},
	}

	WeatherStations = query.Table{
		Name:       "weather_stations",
		PrimaryKey: "id",
		KeyType:    query.KeyInteger,
		Geometries: []string{"position"},
	}

	PhytosanitaryProducts = query.Table{
		Name:       "phytosanitary_products",
		PrimaryKey: "amm",
	}

	VineVarieties = query.Table{
		Name:       "vine_varieties",
		PrimaryKey: "code",
	}

	// Credits holds provenance per dataset slug.
	Credits = query.Table{
		Name:       "credits",
		PrimaryKey: "dataset",
	}
)
