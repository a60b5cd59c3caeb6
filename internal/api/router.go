// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the HTTP-layer tunables.
type RouterConfig struct {
	// CORSAllowedOrigins lists allowed origins; empty disables CORS.
	CORSAllowedOrigins []string

	// RateLimitRequests is the per-IP request budget per window.
	// Zero disables rate limiting.
	RateLimitRequests int

	// RateLimitWindow is the rate limit window.
	RateLimitWindow time.Duration
}

// NewRouter assembles the chi router: global middleware, health probes,
// the recommendation endpoint, catalog browsing, and /metrics.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogging)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders:   []string{requestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}
		r.Use(PrometheusMetrics)

		r.Post("/recommendations", h.Recommend)
		r.Get("/trips", h.ListTrips)
		r.Get("/trips/{id}", h.GetTrip)
		r.Get("/trip-types", h.ListTripTypes)
		r.Get("/themes", h.ListThemes)
		r.Get("/countries", h.ListCountries)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
