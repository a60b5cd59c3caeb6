// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package recommend

import (
	"time"

	"github.com/pathfinderhq/tripmatch/internal/models"
)

// BuildQuery translates a preference context into the declarative query the
// catalog store can apply in SQL. The in-memory filter re-checks the full
// predicate set, so the store may return a superset.
func BuildQuery(pctx *PreferenceContext, now time.Time) CatalogQuery {
	q := CatalogQuery{
		ExcludeStatuses:    []models.OccurrenceStatus{models.StatusFull, models.StatusCancelled},
		DepartureOnOrAfter: startOfDay(now),
		RequireSpots:       true,
	}
	if !pctx.Relaxed {
		q.TypeID = pctx.TypeID
	}
	if pctx.Budget > 0 {
		q.MaxPrice = pctx.Budget * pctx.BudgetCeiling
	}
	if pctx.Difficulty > 0 {
		q.MinDifficulty = maxInt(1, pctx.Difficulty-pctx.DifficultyTol)
		q.MaxDifficulty = minInt(5, pctx.Difficulty+pctx.DifficultyTol)
	}
	return q
}

// MatchesFilter applies the full hard-exclusion predicate set. Failing any
// rule excludes the candidate entirely, independent of score.
func MatchesFilter(pctx *PreferenceContext, c TripCandidate, now time.Time) bool {
	if !c.Occurrence.Status.Bookable() {
		return false
	}

	// Scheduleless trip types ("Private Groups") have no fixed departure;
	// date and capacity rules do not apply to them.
	if !c.Scheduleless {
		if c.Occurrence.StartDate.Before(startOfDay(now)) {
			return false
		}
		if c.Occurrence.SpotsLeft <= 0 {
			return false
		}
		if !matchesDateWindow(pctx, c.Occurrence.StartDate) {
			return false
		}
	}

	// In relaxed mode the trip type is informational only.
	if !pctx.Relaxed && pctx.TypeID != 0 && c.Template.TripTypeID != pctx.TypeID {
		return false
	}

	if pctx.HasGeography() {
		countryHit, continentHit := geographyMatch(pctx, c)
		if !countryHit && !continentHit {
			return false
		}
	}

	if pctx.Difficulty > 0 {
		if absInt(c.Template.DifficultyLevel-pctx.Difficulty) > pctx.DifficultyTol {
			return false
		}
	}

	if pctx.Budget > 0 {
		if c.EffectivePrice() > pctx.Budget*pctx.BudgetCeiling {
			return false
		}
	}

	return true
}

// Filter returns the candidates passing MatchesFilter, preserving order.
func Filter(pctx *PreferenceContext, candidates []TripCandidate, now time.Time) []TripCandidate {
	out := make([]TripCandidate, 0, len(candidates))
	for _, c := range candidates {
		if MatchesFilter(pctx, c, now) {
			out = append(out, c)
		}
	}
	return out
}

// geographyMatch reports whether the candidate intersects the selection by
// exact country and/or by continent.
func geographyMatch(pctx *PreferenceContext, c TripCandidate) (countryHit, continentHit bool) {
	for _, selected := range pctx.Countries {
		for _, id := range c.Template.CountryIDs {
			if id == selected.ID {
				countryHit = true
				break
			}
		}
		if countryHit {
			break
		}
	}
	for _, selected := range pctx.Continents {
		for _, continent := range c.Template.Continents {
			if continent == selected {
				continentHit = true
				break
			}
		}
		if continentHit {
			break
		}
	}
	return countryHit, continentHit
}

// matchesDateWindow checks the year/month filter, with MonthWindow months of
// slack on both sides in relaxed mode.
func matchesDateWindow(pctx *PreferenceContext, start time.Time) bool {
	if pctx.Year == 0 && pctx.Month == 0 {
		return true
	}

	candidate := monthIndex(start.Year(), int(start.Month()))

	switch {
	case pctx.Year > 0 && pctx.Month > 0:
		target := monthIndex(pctx.Year, pctx.Month)
		return absInt(candidate-target) <= pctx.MonthWindow
	case pctx.Year > 0:
		lo := monthIndex(pctx.Year, 1) - pctx.MonthWindow
		hi := monthIndex(pctx.Year, 12) + pctx.MonthWindow
		return candidate >= lo && candidate <= hi
	default:
		// Month without a year matches that month in any year.
		delta := absInt(int(start.Month()) - pctx.Month)
		if delta > 6 {
			delta = 12 - delta
		}
		return delta <= pctx.MonthWindow
	}
}

// monthIndex linearizes a year/month pair for window arithmetic.
func monthIndex(year, month int) int {
	return year*12 + month - 1
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
