// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package recommend

import (
	"math"
	"time"

	"github.com/pathfinderhq/tripmatch/internal/models"
)

// Scorer computes the 0-100 match score of one candidate against one
// preference context. It is pure and deterministic: an ordered sequence of
// small additive rules, summed, penalized in relaxed mode, and clamped.
type Scorer struct {
	cfg   *Config
	rules []scoreRule
}

// scoreRule is one independently testable additive term.
type scoreRule struct {
	name  string
	delta func(pctx *PreferenceContext, c TripCandidate, now time.Time) int
}

// NewScorer builds a scorer with the rule sequence bound to cfg.
func NewScorer(cfg *Config) *Scorer {
	s := &Scorer{cfg: cfg}
	w := cfg.Weights
	t := cfg.Tolerances

	s.rules = []scoreRule{
		{name: "base", delta: func(*PreferenceContext, TripCandidate, time.Time) int {
			return w.Base
		}},
		{name: "theme_match", delta: func(pctx *PreferenceContext, c TripCandidate, _ time.Time) int {
			if len(pctx.ThemeIDs) == 0 {
				return 0
			}
			switch themeOverlap(pctx.ThemeIDs, c.Template.ThemeIDs) {
			case 0:
				return w.ThemeMiss
			case 1:
				return w.ThemeSingle
			default:
				return w.ThemeStrong
			}
		}},
		{name: "difficulty_exact", delta: func(pctx *PreferenceContext, c TripCandidate, _ time.Time) int {
			if pctx.Difficulty > 0 && c.Template.DifficultyLevel == pctx.Difficulty {
				return w.DifficultyExact
			}
			return 0
		}},
		{name: "duration_fit", delta: func(pctx *PreferenceContext, c TripCandidate, _ time.Time) int {
			d := math.Abs(float64(c.Template.TypicalDurationDays) - pctx.DurationMidpoint())
			switch {
			case d <= float64(t.DurationIdealDays):
				return w.DurationIdeal
			case d <= float64(t.DurationGoodDays):
				return w.DurationGood
			default:
				return 0
			}
		}},
		{name: "budget_fit", delta: func(pctx *PreferenceContext, c TripCandidate, _ time.Time) int {
			if pctx.Budget <= 0 {
				return 0
			}
			ratio := c.EffectivePrice() / pctx.Budget
			switch {
			case ratio <= 1.0:
				return w.BudgetWithin
			case ratio <= t.BudgetNearRatio:
				return w.BudgetNear
			case ratio <= t.BudgetStretchRatio:
				return w.BudgetStretch
			default:
				// Beyond the stretch tier scores nothing; the hard
				// ceiling was already applied by the filter.
				return 0
			}
		}},
		{name: "status", delta: func(_ *PreferenceContext, c TripCandidate, _ time.Time) int {
			switch c.Occurrence.Status {
			case models.StatusGuaranteed:
				return w.Guaranteed
			case models.StatusLastPlaces:
				return w.LastPlaces
			default:
				return 0
			}
		}},
		{name: "departing_soon", delta: func(_ *PreferenceContext, c TripCandidate, now time.Time) int {
			if c.Scheduleless || c.Occurrence.StartDate.IsZero() {
				return 0
			}
			until := c.Occurrence.StartDate.Sub(startOfDay(now))
			if until >= 0 && until <= time.Duration(t.DepartingSoonDays)*24*time.Hour {
				return w.DepartingSoon
			}
			return 0
		}},
		{name: "geography", delta: func(pctx *PreferenceContext, c TripCandidate, _ time.Time) int {
			if !pctx.HasGeography() {
				return 0
			}
			countryHit, continentHit := geographyMatch(pctx, c)
			switch {
			case countryHit:
				return w.GeoCountry
			case continentHit:
				return w.GeoContinent
			default:
				return 0
			}
		}},
	}
	return s
}

// Score computes the clamped match score and the factor breakdown for one
// candidate. The relaxed penalty is applied after all additive terms.
func (s *Scorer) Score(pctx *PreferenceContext, c TripCandidate, now time.Time) (int, []Factor) {
	total := 0
	factors := make([]Factor, 0, len(s.rules)+1)

	for _, rule := range s.rules {
		delta := rule.delta(pctx, c, now)
		total += delta
		if delta != 0 {
			factors = append(factors, Factor{Name: rule.name, Delta: delta})
		}
	}

	if pctx.Relaxed {
		total -= pctx.Penalty
		factors = append(factors, Factor{Name: "relaxed_penalty", Delta: -pctx.Penalty})
	}

	return clampScore(total), factors
}

// ScoreAll scores every candidate under the given context.
func (s *Scorer) ScoreAll(pctx *PreferenceContext, candidates []TripCandidate, now time.Time) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		score, factors := s.Score(pctx, c, now)
		out = append(out, ScoredCandidate{
			Candidate: c,
			Score:     score,
			Factors:   factors,
			Relaxed:   pctx.Relaxed,
		})
	}
	return out
}

// themeOverlap counts preferred themes present on the template.
func themeOverlap(preferred, themes []int64) int {
	if len(preferred) == 0 || len(themes) == 0 {
		return 0
	}
	set := make(map[int64]struct{}, len(themes))
	for _, id := range themes {
		set[id] = struct{}{}
	}
	n := 0
	for _, id := range preferred {
		if _, ok := set[id]; ok {
			n++
		}
	}
	return n
}

// clampScore bounds a score to [0, 100].
func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
