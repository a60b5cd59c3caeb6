// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

// Package recommend implements the trip recommendation engine: preference
// normalization, hard filtering, weighted scoring, and a single-level relaxed
// fallback search.
//
// The engine is invoked synchronously once per request and holds no shared
// mutable state between invocations. Each call builds its own preference
// context and candidate lists, so concurrent requests require no internal
// locking. The only shared resource is the read-only catalog behind the
// CatalogProvider interface.
//
// The scoring model is additive: a fixed ordered sequence of small rules,
// each mapping (context, candidate) to a point delta, summed and clamped to
// [0, 100]. Weights and tolerance windows are configuration, not code.
//
// When the strict pass yields fewer results than the configured threshold,
// one relaxed pass runs with widened filters and a fixed score penalty.
// There is no second fallback tier.
package recommend
