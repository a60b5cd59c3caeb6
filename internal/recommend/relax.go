// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package recommend

// RelaxContext derives the widened fallback context from a primary context.
// The relaxation is single-level: a relaxed context is terminal and is never
// relaxed again.
//
// Widenings applied:
//   - geography: the continents of the selected countries join the continent
//     selection, so country-only searches widen to continent level (the
//     original countries stay, keeping the exact-match bonus reachable)
//   - trip type: the hard filter is dropped; the field becomes informational
//   - date window: +/- RelaxedMonthWindow months around any year/month filter
//   - difficulty: tolerance widens from Difficulty to RelaxedDifficulty
//   - budget: ceiling widens from BudgetCeiling to RelaxedBudgetCeiling
func RelaxContext(cfg *Config, pctx *PreferenceContext) *PreferenceContext {
	relaxed := *pctx
	relaxed.Relaxed = true
	relaxed.BudgetCeiling = cfg.Tolerances.RelaxedBudgetCeiling
	relaxed.DifficultyTol = cfg.Tolerances.RelaxedDifficulty
	relaxed.MonthWindow = cfg.Tolerances.RelaxedMonthWindow

	relaxed.Continents = widenToContinents(pctx)
	return &relaxed
}

// widenToContinents merges the continents of the selected countries into the
// continent selection.
func widenToContinents(pctx *PreferenceContext) []string {
	seen := make(map[string]struct{}, len(pctx.Continents)+len(pctx.Countries))
	out := make([]string, 0, len(pctx.Continents)+len(pctx.Countries))

	for _, name := range pctx.Continents {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, country := range pctx.Countries {
		if country.Continent == "" {
			continue
		}
		if _, ok := seen[country.Continent]; ok {
			continue
		}
		seen[country.Continent] = struct{}{}
		out = append(out, country.Continent)
	}
	return out
}
