// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Engine is the single public entry point of the recommendation subsystem.
// It composes the context builder, candidate filter, scorer, relaxed
// expansion, and result assembly. It is safe for concurrent use: every call
// works on its own context and candidate lists.
type Engine struct {
	config  *Config
	logger  zerolog.Logger
	clock   Clock
	catalog CatalogProvider
	scorer  *Scorer
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		clock:  SystemClock{},
		scorer: NewScorer(cfg),
	}, nil
}

// SetCatalog sets the read-only catalog the engine queries.
func (e *Engine) SetCatalog(cp CatalogProvider) {
	e.catalog = cp
}

// SetClock replaces the time source. Tests use a FixedClock.
func (e *Engine) SetClock(c Clock) {
	e.clock = c
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// Recommend builds a validated preference context, runs the strict pass,
// widens to the relaxed pass when too few results remain, and assembles the
// ranked response. Zero candidates after relaxation is a valid terminal
// outcome, never an error.
func (e *Engine) Recommend(ctx context.Context, input PreferenceInput) (*Response, error) {
	start := time.Now()
	now := e.clock.Now()

	if e.catalog == nil {
		return nil, fmt.Errorf("catalog provider not set")
	}

	input = e.prepareInput(input, now)
	logger := e.logger.With().Str("request_id", input.RequestID).Logger()
	logger.Debug().Msg("processing recommendation request")

	pctx, err := e.buildContext(ctx, input, now)
	if err != nil {
		return nil, err
	}

	primary, evaluated, err := e.runPass(ctx, pctx, now)
	if err != nil {
		return nil, err
	}

	relaxed, relaxedEvaluated, err := e.maybeRelax(ctx, pctx, primary, now)
	if err != nil {
		return nil, err
	}
	evaluated += relaxedEvaluated

	merged := append(primary, relaxed...)
	sortScored(merged)
	if len(merged) > e.config.Limits.MaxResults {
		merged = merged[:e.config.Limits.MaxResults]
	}

	resp := e.buildResponse(input.RequestID, merged, evaluated, start)
	e.logInvocation(logger, input, resp)
	return resp, nil
}

// prepareInput fills the request ID when the caller supplied none.
func (e *Engine) prepareInput(input PreferenceInput, now time.Time) PreferenceInput {
	if input.RequestID == "" {
		input.RequestID = fmt.Sprintf("match-%d", now.UnixNano())
	}
	return input
}

// buildContext resolves the selected countries and normalizes the input.
func (e *Engine) buildContext(ctx context.Context, input PreferenceInput, now time.Time) (*PreferenceContext, error) {
	resolved, err := e.catalog.ResolveCountries(ctx, input.SelectedCountries)
	if err != nil {
		return nil, &CatalogError{Op: "resolve countries", Err: err}
	}
	return BuildContext(e.config, input, resolved, now)
}

// runPass queries, filters, and scores one pass (primary or relaxed).
// The second return value is the number of candidates evaluated.
func (e *Engine) runPass(ctx context.Context, pctx *PreferenceContext, now time.Time) ([]ScoredCandidate, int, error) {
	candidates, err := e.catalog.FindCandidates(ctx, BuildQuery(pctx, now))
	if err != nil {
		op := "find candidates"
		if pctx.Relaxed {
			op = "find relaxed candidates"
		}
		return nil, 0, &CatalogError{Op: op, Err: err}
	}

	e.markScheduleless(candidates)
	filtered := Filter(pctx, candidates, now)
	return e.scorer.ScoreAll(pctx, filtered, now), len(candidates), nil
}

// markScheduleless flags candidates of the configured scheduleless trip type
// by name, covering catalogs that do not carry the flag themselves.
func (e *Engine) markScheduleless(candidates []TripCandidate) {
	for i := range candidates {
		if !candidates[i].Scheduleless && candidates[i].Template.TripTypeName == e.config.SchedulelessTypeName {
			candidates[i].Scheduleless = true
		}
	}
}

// maybeRelax runs the single-level relaxed expansion when the primary pass
// yielded fewer results than the threshold. Occurrences already present in
// the primary set are excluded before scoring, and only as many relaxed
// candidates as needed to reach the overall cap are retained.
func (e *Engine) maybeRelax(ctx context.Context, pctx *PreferenceContext, primary []ScoredCandidate, now time.Time) ([]ScoredCandidate, int, error) {
	if len(primary) >= e.config.Limits.RelaxThreshold {
		return nil, 0, nil
	}

	rctx := RelaxContext(e.config, pctx)

	candidates, err := e.catalog.FindCandidates(ctx, BuildQuery(rctx, now))
	if err != nil {
		return nil, 0, &CatalogError{Op: "find relaxed candidates", Err: err}
	}
	evaluated := len(candidates)
	e.markScheduleless(candidates)

	seen := make(map[int64]struct{}, len(primary))
	for _, sc := range primary {
		seen[sc.Candidate.Occurrence.ID] = struct{}{}
	}

	pool := make([]TripCandidate, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.Occurrence.ID]; dup {
			continue
		}
		pool = append(pool, c)
	}

	scored := e.scorer.ScoreAll(rctx, Filter(rctx, pool, now), now)
	sortScored(scored)

	needed := e.config.Limits.MaxResults - len(primary)
	if needed < 0 {
		needed = 0
	}
	if len(scored) > needed {
		scored = scored[:needed]
	}
	return scored, evaluated, nil
}

// buildResponse assembles the denormalized result list and metadata.
func (e *Engine) buildResponse(requestID string, merged []ScoredCandidate, evaluated int, start time.Time) *Response {
	results := make([]Result, 0, len(merged))
	primaryCount, relaxedCount := 0, 0

	for _, sc := range merged {
		if sc.Relaxed {
			relaxedCount++
		} else {
			primaryCount++
		}
		results = append(results, toResult(sc))
	}

	return &Response{
		Results: results,
		Metadata: ResponseMetadata{
			RequestID:                requestID,
			TotalCandidatesEvaluated: evaluated,
			PrimaryCount:             primaryCount,
			RelaxedCount:             relaxedCount,
			HasRelaxedResults:        relaxedCount > 0,
			HasNoResults:             len(results) == 0,
			ScoreThresholds:          e.config.Thresholds,
			Stats:                    computeStats(merged),
			LatencyMS:                time.Since(start).Milliseconds(),
			Timestamp:                time.Now(),
		},
	}
}

// logInvocation emits the one structured record per invocation consumed by
// the external logging collaborator.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (e *Engine) logInvocation(logger zerolog.Logger, input PreferenceInput, resp *Response) {
	ids := make([]int64, len(resp.Results))
	scores := make([]int, len(resp.Results))
	for i, r := range resp.Results {
		ids[i] = r.OccurrenceID
		scores[i] = r.MatchScore
	}

	logger.Info().
		Ints64("selected_countries", input.SelectedCountries).
		Strs("selected_continents", input.SelectedContinents).
		Int64("preferred_type_id", input.PreferredTypeID).
		Ints64("preferred_theme_ids", input.PreferredThemeIDs).
		Float64("budget", input.Budget).
		Int("difficulty", input.Difficulty).
		Str("year", input.Year).
		Str("month", input.Month).
		Int("candidates_evaluated", resp.Metadata.TotalCandidatesEvaluated).
		Int("primary_count", resp.Metadata.PrimaryCount).
		Int("relaxed_count", resp.Metadata.RelaxedCount).
		Bool("has_no_results", resp.Metadata.HasNoResults).
		Ints64("result_ids", ids).
		Ints("result_scores", scores).
		Int("top_score", resp.Metadata.Stats.Top).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")
}

// toResult denormalizes one scored candidate for the response.
func toResult(sc ScoredCandidate) Result {
	c := sc.Candidate
	return Result{
		OccurrenceID:    c.Occurrence.ID,
		TemplateID:      c.Template.ID,
		Title:           c.Template.Title,
		StartDate:       c.Occurrence.StartDate,
		EndDate:         c.Occurrence.EndDate,
		Status:          c.Occurrence.Status,
		SpotsLeft:       c.Occurrence.SpotsLeft,
		Price:           c.EffectivePrice(),
		DurationDays:    c.Template.TypicalDurationDays,
		DifficultyLevel: c.Template.DifficultyLevel,
		TripTypeName:    c.Template.TripTypeName,
		GuideName:       c.Occurrence.GuideName,
		MatchScore:      sc.Score,
		IsRelaxed:       sc.Relaxed,
		Factors:         sc.Factors,
	}
}

// sortScored orders candidates by score descending, primary entries before
// relaxed entries at equal score, then earliest departure first (candidates
// without a date sort last), then occurrence ID for determinism.
func sortScored(items []ScoredCandidate) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Relaxed != b.Relaxed {
			return !a.Relaxed
		}
		aStart, bStart := a.Candidate.Occurrence.StartDate, b.Candidate.Occurrence.StartDate
		switch {
		case aStart.IsZero() && !bStart.IsZero():
			return false
		case !aStart.IsZero() && bStart.IsZero():
			return true
		case !aStart.Equal(bStart):
			return aStart.Before(bStart)
		}
		return a.Candidate.Occurrence.ID < b.Candidate.Occurrence.ID
	})
}

// computeStats aggregates the returned scores.
func computeStats(items []ScoredCandidate) ScoreStats {
	if len(items) == 0 {
		return ScoreStats{}
	}

	top := 0
	sum := 0.0
	for _, sc := range items {
		if sc.Score > top {
			top = sc.Score
		}
		sum += float64(sc.Score)
	}
	mean := sum / float64(len(items))

	variance := 0.0
	for _, sc := range items {
		d := float64(sc.Score) - mean
		variance += d * d
	}
	variance /= float64(len(items))

	return ScoreStats{
		Top:     top,
		Average: mean,
		StdDev:  math.Sqrt(variance),
	}
}
