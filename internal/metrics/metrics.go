// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

// Package metrics provides Prometheus instrumentation for the
// recommendation pipeline, the catalog store, and the HTTP layer. All
// collectors register on the default registry via promauto and are exposed
// on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation pipeline metrics.
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total recommendation invocations by outcome",
		},
		[]string{"outcome"}, // "ok", "validation_error", "catalog_error", "error"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "End-to-end recommendation latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	RelaxedActivations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_relaxed_activations_total",
			Help: "Total invocations where the relaxed fallback pass ran",
		},
	)

	NoResultOutcomes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_no_results_total",
			Help: "Total invocations that returned zero results after relaxation",
		},
	)

	CandidatesEvaluated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_candidates_evaluated",
			Help:    "Candidates evaluated per invocation (both passes)",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
		},
	)

	ResultScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_top_score",
			Help:    "Top match score per non-empty response",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	// Catalog store metrics.
	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_query_duration_seconds",
			Help:    "Catalog query latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CatalogQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_query_errors_total",
			Help: "Total catalog query failures",
		},
		[]string{"operation"},
	)

	// HTTP layer metrics.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)
)

// RecordRecommendation records one engine invocation.
func RecordRecommendation(outcome string, duration time.Duration, candidatesEvaluated, topScore int, relaxed, noResults bool) {
	RecommendationRequests.WithLabelValues(outcome).Inc()
	if outcome != "ok" {
		return
	}

	RecommendationDuration.Observe(duration.Seconds())
	CandidatesEvaluated.Observe(float64(candidatesEvaluated))
	if relaxed {
		RelaxedActivations.Inc()
	}
	if noResults {
		NoResultOutcomes.Inc()
	} else {
		ResultScores.Observe(float64(topScore))
	}
}

// RecordCatalogQuery records one catalog store operation.
func RecordCatalogQuery(operation string, duration time.Duration, err error) {
	CatalogQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		CatalogQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
