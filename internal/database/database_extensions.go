// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/tomtom215/terroir/internal/logging"
)

// extensionTimeout bounds INSTALL/LOAD statements. DuckDB CGO calls ignore
// context cancellation, so the bound is enforced with a goroutine.
const extensionTimeout = 30 * time.Second

// duckdbVersion is the extension directory version for the bundled engine.
const duckdbVersion = "v1.4.3"

// LoadSpatial makes the ST_* functions available. It is exported for
// connections wrapped with NewFromConn.
func (db *DB) LoadSpatial() error {
	return db.loadSpatial()
}

func (db *DB) loadSpatial() error {
	var err error
	switch db.dialect {
	case DialectPostgres:
		_, err = db.queryRowWithHardTimeout("SELECT PostGIS_Version()")
		if err != nil {
			err = fmt.Errorf("postgis unavailable: %w", err)
		}
	default:
		err = db.installDuckDBSpatial()
	}

	db.spatialAvailable = err == nil
	return err
}

// installDuckDBSpatial follows INSTALL, LOAD, then verification. A locally
// present extension skips the download.
func (db *DB) installDuckDBSpatial() error {
	if !isExtensionInstalledLocally("spatial") {
		logging.Info().Str("extension", "spatial").Msg("Extension not found locally, downloading from repository")
		if err := db.execWithHardTimeout("INSTALL spatial;"); err != nil {
			return fmt.Errorf("failed to install spatial extension: %w", err)
		}
	}

	if err := db.execWithHardTimeout("LOAD spatial;"); err != nil {
		return fmt.Errorf("failed to load spatial extension: %w", err)
	}

	if _, err := db.queryRowWithHardTimeout("SELECT ST_AsText(ST_Point(1, 2))"); err != nil {
		return fmt.Errorf("spatial extension loaded but functions unavailable: %w", err)
	}
	return nil
}

// isExtensionInstalledLocally checks the DuckDB extension directory.
func isExtensionInstalledLocally(name string) bool {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	platform := runtime.GOOS + "_" + runtime.GOARCH
	extPath := filepath.Join(homeDir, ".duckdb", "extensions", duckdbVersion, platform, name+".duckdb_extension")
	_, err = os.Stat(extPath)
	return err == nil
}

type execResult struct {
	err error
}

type queryResult struct {
	value any
	err   error
}

// execWithHardTimeout executes a statement with a goroutine-based hard timeout.
func (db *DB) execWithHardTimeout(statement string) error {
	resultCh := make(chan execResult, 1)

	ctx, cancel := context.WithTimeout(context.Background(), extensionTimeout)
	defer cancel()

	go func() {
		_, err := db.conn.ExecContext(ctx, statement)
		resultCh <- execResult{err: err}
	}()

	select {
	case result := <-resultCh:
		return result.err
	case <-time.After(extensionTimeout):
		return fmt.Errorf("operation timed out after %v", extensionTimeout)
	}
}

// queryRowWithHardTimeout scans a single value with a hard timeout.
func (db *DB) queryRowWithHardTimeout(statement string) (any, error) {
	resultCh := make(chan queryResult, 1)

	ctx, cancel := context.WithTimeout(context.Background(), extensionTimeout)
	defer cancel()

	go func() {
		var value any
		err := db.conn.QueryRowContext(ctx, statement).Scan(&value)
		resultCh <- queryResult{value: value, err: err}
	}()

	select {
	case result := <-resultCh:
		return result.value, result.err
	case <-time.After(extensionTimeout):
		return nil, fmt.Errorf("query timed out after %v", extensionTimeout)
	}
}
