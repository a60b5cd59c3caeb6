// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package recommend

import (
	"context"
	"time"

	"github.com/pathfinderhq/tripmatch/internal/models"
)

// Note: This package depends only on internal/models to maintain clean
// separation. The CatalogProvider interface allows integration with the
// catalog package without creating circular imports.

// SentinelAll is the year/month input value meaning "no filter".
const SentinelAll = "all"

// PreferenceInput carries the raw, mostly-optional preference fields as the
// caller supplied them. All fields are optional; zero values mean "no
// preference". Year and Month accept "all" or a numeric string.
type PreferenceInput struct {
	// SelectedCountries are destination country IDs.
	SelectedCountries []int64 `json:"selected_countries,omitempty" validate:"omitempty,dive,gt=0"`

	// SelectedContinents are continent names ("Asia", "South America", ...).
	SelectedContinents []string `json:"selected_continents,omitempty" validate:"omitempty,dive,min=1"`

	// PreferredTypeID restricts results to one trip type when non-zero.
	PreferredTypeID int64 `json:"preferred_type_id,omitempty" validate:"min=0"`

	// PreferredThemeIDs are theme tag IDs. Lists longer than three are
	// truncated, not rejected.
	PreferredThemeIDs []int64 `json:"preferred_theme_ids,omitempty" validate:"omitempty,dive,gt=0"`

	// MinDuration and MaxDuration bound the trip length in days.
	MinDuration int `json:"min_duration,omitempty" validate:"min=0"`
	MaxDuration int `json:"max_duration,omitempty" validate:"min=0"`

	// Budget is the per-person budget. Zero means unbounded.
	Budget float64 `json:"budget,omitempty" validate:"min=0"`

	// Difficulty is the preferred difficulty (1-3). Zero means any.
	Difficulty int `json:"difficulty,omitempty" validate:"min=0,max=3"`

	// Year is "all" or a four digit year within the plausible window.
	Year string `json:"year,omitempty"`

	// Month is "all" or "1".."12".
	Month string `json:"month,omitempty"`

	// RequestID is an optional identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// PreferenceContext is the validated, normalized form of PreferenceInput.
// It is created per request, immutable after construction, and discarded
// when the response is assembled.
type PreferenceContext struct {
	// Countries are the resolved selected countries (with continents).
	Countries []models.Country

	// Continents are the selected continent names, deduplicated against
	// the country selection (the Antarctica rule).
	Continents []string

	// TypeID is the hard trip type filter. Zero means any. In relaxed
	// mode the field is informational only and never filters or scores.
	TypeID int64

	// ThemeIDs are the preferred themes, at most three.
	ThemeIDs []int64

	MinDuration int
	MaxDuration int

	// Budget is zero when unbounded.
	Budget float64

	// Difficulty is zero when unset, otherwise 1-3.
	Difficulty int

	// Year and Month are zero when unfiltered.
	Year  int
	Month int

	// Relaxed marks the widened fallback pass.
	Relaxed bool

	// Penalty is subtracted from every score computed under this context
	// when Relaxed is true.
	Penalty int

	// Pass tolerances, bound from Config at build time and widened by the
	// relaxation transform.
	BudgetCeiling float64 // effective price must be <= Budget * BudgetCeiling
	DifficultyTol int     // |template difficulty - preferred| <= DifficultyTol
	MonthWindow   int     // months of slack around Year/Month (0 = exact)
}

// HasGeography reports whether any country or continent was selected.
func (c *PreferenceContext) HasGeography() bool {
	return len(c.Countries) > 0 || len(c.Continents) > 0
}

// CountryIDs returns the selected country IDs.
func (c *PreferenceContext) CountryIDs() []int64 {
	ids := make([]int64, len(c.Countries))
	for i, country := range c.Countries {
		ids[i] = country.ID
	}
	return ids
}

// DurationMidpoint is the center of the requested duration window in days.
func (c *PreferenceContext) DurationMidpoint() float64 {
	return (float64(c.MinDuration) + float64(c.MaxDuration)) / 2
}

// TripCandidate is one occurrence+template joined catalog record, the unit
// the filter and scorer operate on.
type TripCandidate struct {
	Occurrence models.TripOccurrence
	Template   models.TripTemplate

	// Scheduleless marks candidates of a trip type without fixed
	// departures ("Private Groups"); date and capacity filters skip them.
	Scheduleless bool
}

// EffectivePrice is the occurrence override or the template base price.
func (c TripCandidate) EffectivePrice() float64 {
	return c.Occurrence.EffectivePrice(c.Template)
}

// Factor is one applied scoring rule and its point delta.
type Factor struct {
	Name  string `json:"name"`
	Delta int    `json:"delta"`
}

// ScoredCandidate pairs a candidate with its match score and breakdown.
// It lives only until response assembly.
type ScoredCandidate struct {
	Candidate TripCandidate
	Score     int
	Factors   []Factor
	Relaxed   bool
}

// Result is one denormalized entry in the ranked response.
type Result struct {
	OccurrenceID    int64                   `json:"occurrence_id"`
	TemplateID      int64                   `json:"template_id"`
	Title           string                  `json:"title"`
	StartDate       time.Time               `json:"start_date"`
	EndDate         time.Time               `json:"end_date"`
	Status          models.OccurrenceStatus `json:"status"`
	SpotsLeft       int                     `json:"spots_left"`
	Price           float64                 `json:"price"`
	DurationDays    int                     `json:"duration_days"`
	DifficultyLevel int                     `json:"difficulty_level"`
	TripTypeName    string                  `json:"trip_type_name"`
	GuideName       string                  `json:"guide_name,omitempty"`
	MatchScore      int                     `json:"match_score"`
	IsRelaxed       bool                    `json:"is_relaxed"`
	Factors         []Factor                `json:"factors"`
}

// ScoreThresholds are display cut-offs for clients ("great match" / "good
// match" badges). They have no effect on ranking.
type ScoreThresholds struct {
	High int `json:"high"`
	Mid  int `json:"mid"`
}

// ScoreStats aggregates the returned scores for logging and metrics.
type ScoreStats struct {
	Top     int     `json:"top"`
	Average float64 `json:"average"`
	StdDev  float64 `json:"std_dev"`
}

// ResponseMetadata carries counts and diagnostics for one invocation.
type ResponseMetadata struct {
	RequestID                string          `json:"request_id"`
	TotalCandidatesEvaluated int             `json:"total_candidates_evaluated"`
	PrimaryCount             int             `json:"primary_count"`
	RelaxedCount             int             `json:"relaxed_count"`
	HasRelaxedResults        bool            `json:"has_relaxed_results"`
	HasNoResults             bool            `json:"has_no_results"`
	ScoreThresholds          ScoreThresholds `json:"score_thresholds"`
	Stats                    ScoreStats      `json:"stats"`
	LatencyMS                int64           `json:"latency_ms"`
	Timestamp                time.Time       `json:"timestamp"`
}

// Response is the ranked recommendation list plus metadata.
type Response struct {
	Results  []Result         `json:"results"`
	Metadata ResponseMetadata `json:"metadata"`
}

// CatalogQuery is the declarative filter the engine hands to the catalog.
// The store applies the coarse predicates it can express in SQL; the
// engine's in-memory filter re-checks the full rule set, so a store may
// safely return a superset.
type CatalogQuery struct {
	// ExcludeStatuses lists statuses to drop (FULL, CANCELLED).
	ExcludeStatuses []models.OccurrenceStatus

	// DepartureOnOrAfter is the date floor. Zero disables it.
	// Scheduleless trip types bypass it regardless.
	DepartureOnOrAfter time.Time

	// RequireSpots requires spots_left > 0 (scheduleless types exempt).
	RequireSpots bool

	// TypeID restricts to one trip type when non-zero.
	TypeID int64

	// MaxPrice caps the effective price. Zero disables it.
	MaxPrice float64

	// MinDifficulty and MaxDifficulty bound the template difficulty
	// level. Both zero disables the bound.
	MinDifficulty int
	MaxDifficulty int
}

// CatalogProvider is the read-only catalog the engine queries. Implemented
// by the catalog package; mocked in tests.
type CatalogProvider interface {
	// FindCandidates returns occurrence+template records matching the
	// query. Returning a superset of the query is allowed.
	FindCandidates(ctx context.Context, q CatalogQuery) ([]TripCandidate, error)

	// ResolveCountries maps country IDs to catalog countries, preserving
	// input order. Unknown IDs are omitted, not an error.
	ResolveCountries(ctx context.Context, ids []int64) ([]models.Country, error)
}
