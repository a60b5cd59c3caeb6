// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

// Package main is the entry point for the Tripmatch server.
//
// Tripmatch matches traveler preferences (themes, difficulty, duration,
// budget, dates, geography) against a catalog of scheduled trip departures
// and returns up to ten scored recommendations, widening its filters in a
// single relaxed pass when strict matching comes up short.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, YAML file, env vars)
//  2. Logging: zerolog global logger from the logging config section
//  3. Catalog: SQLite store, schema creation, optional JSON snapshot seed
//  4. Engine: recommendation engine bound to the catalog
//  5. HTTP Server: chi router with health probes and /metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HTTP_PORT, DATABASE_PATH, LOG_LEVEL, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (shutdown timeout)
//   - Closes the catalog database
//
// # Example Usage
//
// In-memory catalog seeded from a snapshot, for local development:
//
//	export DATABASE_PATH=:memory:
//	export SEED_PATH=./testdata/catalog.json
//	export LOG_FORMAT=console
//	./tripmatch
//
// Production:
//
//	export DATABASE_PATH=/data/tripmatch.db
//	export HTTP_PORT=8080
//	./tripmatch
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pathfinderhq/tripmatch/internal/api"
	"github.com/pathfinderhq/tripmatch/internal/catalog"
	"github.com/pathfinderhq/tripmatch/internal/config"
	"github.com/pathfinderhq/tripmatch/internal/logging"
	"github.com/pathfinderhq/tripmatch/internal/recommend"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting Tripmatch")

	store, err := catalog.Open(cfg.Database.Path, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open catalog database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog database")
		}
	}()

	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize catalog schema")
	}

	if cfg.Database.SeedPath != "" {
		snap, err := catalog.LoadSnapshot(cfg.Database.SeedPath)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Database.SeedPath).Msg("Failed to load catalog snapshot")
		}
		if err := store.Seed(ctx, snap); err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed catalog")
		}
	}

	engine, err := recommend.NewEngine(&cfg.Recommend, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	engine.SetCatalog(store)

	handler := api.NewHandler(engine, store, logging.Logger())
	router := api.NewRouter(handler, api.RouterConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		RateLimitRequests:  cfg.Security.RateLimitRequests,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		serverErr <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed, forcing close")
		_ = server.Close()
	}

	logging.Info().Msg("Application stopped gracefully")
}
