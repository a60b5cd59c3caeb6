// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package recommend

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pathfinderhq/tripmatch/internal/models"
)

// antarctica is both a selectable country and a continent in the catalog.
// When it appears as both, the continent entry is dropped so geography
// filtering does not double-count it.
const antarctica = "Antarctica"

// BuildContext normalizes raw preference input into a validated, immutable
// PreferenceContext. countries are the resolved selected countries; now is
// the injected current time. Malformed fields produce a *ValidationError
// naming every offending field.
func BuildContext(cfg *Config, in PreferenceInput, countries []models.Country, now time.Time) (*PreferenceContext, error) {
	var fields []FieldError

	minDur, maxDur, errs := normalizeDuration(cfg, in.MinDuration, in.MaxDuration)
	fields = append(fields, errs...)

	if in.Budget < 0 {
		fields = append(fields, FieldError{Field: "budget", Message: "must be non-negative"})
	}
	if in.Difficulty < 0 || in.Difficulty > 3 {
		fields = append(fields, FieldError{Field: "difficulty", Message: "must be between 1 and 3"})
	}
	if in.PreferredTypeID < 0 {
		fields = append(fields, FieldError{Field: "preferred_type_id", Message: "must be non-negative"})
	}

	year, err := parseYear(in.Year, now, cfg.Limits.YearHorizon)
	if err != nil {
		fields = append(fields, *err)
	}
	month, err := parseMonth(in.Month)
	if err != nil {
		fields = append(fields, *err)
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	themes := in.PreferredThemeIDs
	if len(themes) > cfg.Limits.MaxThemes {
		// Over-long theme lists are truncated, not rejected.
		themes = themes[:cfg.Limits.MaxThemes]
	}

	return &PreferenceContext{
		Countries:     countries,
		Continents:    normalizeContinents(in.SelectedContinents, countries),
		TypeID:        in.PreferredTypeID,
		ThemeIDs:      append([]int64(nil), themes...),
		MinDuration:   minDur,
		MaxDuration:   maxDur,
		Budget:        in.Budget,
		Difficulty:    in.Difficulty,
		Year:          year,
		Month:         month,
		Relaxed:       false,
		Penalty:       cfg.Weights.RelaxedPenalty,
		BudgetCeiling: cfg.Tolerances.BudgetCeiling,
		DifficultyTol: cfg.Tolerances.Difficulty,
		MonthWindow:   0,
	}, nil
}

// normalizeDuration applies defaults and checks ordering.
func normalizeDuration(cfg *Config, minDur, maxDur int) (int, int, []FieldError) {
	var fields []FieldError

	if minDur < 0 {
		fields = append(fields, FieldError{Field: "min_duration", Message: "must be non-negative"})
	}
	if maxDur < 0 {
		fields = append(fields, FieldError{Field: "max_duration", Message: "must be non-negative"})
	}
	if minDur == 0 {
		minDur = cfg.Limits.DefaultMinDuration
	}
	if maxDur == 0 {
		maxDur = cfg.Limits.DefaultMaxDuration
	}
	if len(fields) == 0 && minDur > maxDur {
		fields = append(fields, FieldError{Field: "min_duration", Message: "must not exceed max_duration"})
	}
	return minDur, maxDur, fields
}

// parseYear accepts "", "all", or a year within [current, current+horizon].
func parseYear(raw string, now time.Time, horizon int) (int, *FieldError) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" || raw == SentinelAll {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &FieldError{Field: "year", Message: "must be a year or 'all'"}
	}
	if year < now.Year() || year > now.Year()+horizon {
		return 0, &FieldError{
			Field:   "year",
			Message: fmt.Sprintf("must be between %d and %d", now.Year(), now.Year()+horizon),
		}
	}
	return year, nil
}

// parseMonth accepts "", "all", or "1".."12".
func parseMonth(raw string) (int, *FieldError) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" || raw == SentinelAll {
		return 0, nil
	}
	month, err := strconv.Atoi(raw)
	if err != nil || month < 1 || month > 12 {
		return 0, &FieldError{Field: "month", Message: "must be between 1 and 12 or 'all'"}
	}
	return month, nil
}

// normalizeContinents trims, deduplicates, and applies the Antarctica rule
// against the resolved country selection.
func normalizeContinents(raw []string, countries []models.Country) []string {
	antarcticaSelected := false
	for _, c := range countries {
		if c.Name == antarctica {
			antarcticaSelected = true
			break
		}
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if antarcticaSelected && name == antarctica {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
