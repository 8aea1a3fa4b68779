// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/terroir/internal/api"
	"github.com/tomtom215/terroir/internal/cache"
	"github.com/tomtom215/terroir/internal/config"
	"github.com/tomtom215/terroir/internal/database"
	"github.com/tomtom215/terroir/internal/database/query"
	"github.com/tomtom215/terroir/internal/datasets"
	"github.com/tomtom215/terroir/internal/listing"
	"github.com/tomtom215/terroir/internal/logging"
	"github.com/tomtom215/terroir/internal/supervisor"
	"github.com/tomtom215/terroir/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Terroir stopped with an error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("driver", cfg.Database.Driver).
		Str("environment", cfg.Server.Environment).
		Int("page_size", cfg.Listing.PageSize).
		Msg("Configuration loaded")

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	responseCache := cache.New(cfg.Cache.Capacity, cfg.Cache.TTL)
	engine := query.NewEngine(db, responseCache, db.Dialect(), query.Options{
		TTL:     cfg.Cache.TTL,
		Timeout: cfg.Database.QueryTimeout,
	})
	catalog := datasets.NewCatalog(engine, listing.NewPaginator(cfg.Listing.PageSize))

	handler := api.NewHandler(catalog, db, cfg.Server.BaseURL)
	router := api.NewRouter(handler, catalog, api.ChiMiddlewareConfigFrom(cfg.Security))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}
	tree.AddDataService(services.NewCacheSweeperService(responseCache, cfg.Cache.SweepInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("addr", server.Addr).
		Int("datasets", len(catalog.Datasets())).
		Msg("Starting Terroir")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Terroir stopped gracefully")
	return nil
}
