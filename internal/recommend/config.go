// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package recommend

import "fmt"

// Config contains all tunables for the recommendation engine. Scoring
// weights are plain point values added to the base score; changing the
// ranking behavior is a configuration change, not a code change.
type Config struct {
	// Weights defines the point delta of each scoring rule.
	Weights Weights `json:"weights"`

	// Tolerances defines the hard-filter and soft-signal windows.
	Tolerances Tolerances `json:"tolerances"`

	// Limits contains operational limits.
	Limits Limits `json:"limits"`

	// Thresholds are client display cut-offs attached to every response.
	Thresholds ScoreThresholds `json:"thresholds"`

	// SchedulelessTypeName names the trip type whose occurrences have no
	// fixed departure ("Private Groups").
	SchedulelessTypeName string `json:"scheduleless_type_name"`
}

// Weights defines the point contribution of each scoring rule.
type Weights struct {
	// Base is the constant starting score.
	Base int `json:"base"`

	// ThemeStrong applies when two or more preferred themes match.
	ThemeStrong int `json:"theme_strong"`
	// ThemeSingle applies when exactly one preferred theme matches.
	ThemeSingle int `json:"theme_single"`
	// ThemeMiss applies (negative) when themes were given and none match.
	ThemeMiss int `json:"theme_miss"`

	// DifficultyExact applies when the template difficulty equals the
	// preferred difficulty.
	DifficultyExact int `json:"difficulty_exact"`

	// DurationIdeal and DurationGood reward proximity to the midpoint of
	// the requested duration window.
	DurationIdeal int `json:"duration_ideal"`
	DurationGood  int `json:"duration_good"`

	// BudgetWithin, BudgetNear and BudgetStretch are the <=100%, <=110%
	// and <=120% price/budget tiers.
	BudgetWithin  int `json:"budget_within"`
	BudgetNear    int `json:"budget_near"`
	BudgetStretch int `json:"budget_stretch"`

	// Guaranteed and LastPlaces are status bonuses.
	Guaranteed int `json:"guaranteed"`
	LastPlaces int `json:"last_places"`

	// DepartingSoon applies when the departure is near.
	DepartingSoon int `json:"departing_soon"`

	// GeoCountry and GeoContinent are the exact-country and
	// continent-only geography bonuses.
	GeoCountry   int `json:"geo_country"`
	GeoContinent int `json:"geo_continent"`

	// RelaxedPenalty is subtracted from every relaxed-pass score after
	// all additive terms.
	RelaxedPenalty int `json:"relaxed_penalty"`
}

// Tolerances defines the hard-filter windows and their relaxed widenings.
// All boundaries are inclusive.
type Tolerances struct {
	// BudgetCeiling is the hard price ceiling as a multiple of the
	// budget in the primary pass; RelaxedBudgetCeiling in the relaxed
	// pass.
	BudgetCeiling        float64 `json:"budget_ceiling"`
	RelaxedBudgetCeiling float64 `json:"relaxed_budget_ceiling"`

	// Difficulty and RelaxedDifficulty are the +/- difficulty windows.
	Difficulty        int `json:"difficulty"`
	RelaxedDifficulty int `json:"relaxed_difficulty"`

	// DurationIdealDays and DurationGoodDays bound the distance from the
	// duration midpoint for the two duration bonus tiers.
	DurationIdealDays int `json:"duration_ideal_days"`
	DurationGoodDays  int `json:"duration_good_days"`

	// DepartingSoonDays bounds the departing-soon bonus window.
	DepartingSoonDays int `json:"departing_soon_days"`

	// BudgetNearRatio and BudgetStretchRatio are the price/budget cut
	// points of the middle scoring tiers.
	BudgetNearRatio    float64 `json:"budget_near_ratio"`
	BudgetStretchRatio float64 `json:"budget_stretch_ratio"`

	// RelaxedMonthWindow is the +/- month slack applied to a year/month
	// filter in the relaxed pass.
	RelaxedMonthWindow int `json:"relaxed_month_window"`
}

// Limits contains operational limits.
type Limits struct {
	// MaxResults caps the total returned list.
	MaxResults int `json:"max_results"`

	// RelaxThreshold triggers the relaxed pass when the primary result
	// count falls below it.
	RelaxThreshold int `json:"relax_threshold"`

	// DefaultMinDuration and DefaultMaxDuration fill missing duration
	// bounds.
	DefaultMinDuration int `json:"default_min_duration"`
	DefaultMaxDuration int `json:"default_max_duration"`

	// YearHorizon bounds how far ahead a year filter may reach.
	YearHorizon int `json:"year_horizon"`

	// MaxThemes truncates the preferred theme list.
	MaxThemes int `json:"max_themes"`
}

// DefaultConfig returns a Config with the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			Base:            30,
			ThemeStrong:     25,
			ThemeSingle:     12,
			ThemeMiss:       -15,
			DifficultyExact: 15,
			DurationIdeal:   12,
			DurationGood:    8,
			BudgetWithin:    12,
			BudgetNear:      8,
			BudgetStretch:   5,
			Guaranteed:      7,
			LastPlaces:      15,
			DepartingSoon:   7,
			GeoCountry:      15,
			GeoContinent:    5,
			RelaxedPenalty:  15,
		},
		Tolerances: Tolerances{
			BudgetCeiling:        1.30,
			RelaxedBudgetCeiling: 1.50,
			Difficulty:           1,
			RelaxedDifficulty:    2,
			DurationIdealDays:    2,
			DurationGoodDays:     5,
			DepartingSoonDays:    30,
			BudgetNearRatio:      1.10,
			BudgetStretchRatio:   1.20,
			RelaxedMonthWindow:   2,
		},
		Limits: Limits{
			MaxResults:         10,
			RelaxThreshold:     6,
			DefaultMinDuration: 1,
			DefaultMaxDuration: 60,
			YearHorizon:        3,
			MaxThemes:          3,
		},
		Thresholds: ScoreThresholds{
			High: 70,
			Mid:  50,
		},
		SchedulelessTypeName: "Private Groups",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Limits.MaxResults < 1 {
		return fmt.Errorf("limits.max_results must be positive, got %d", c.Limits.MaxResults)
	}
	if c.Limits.RelaxThreshold < 0 {
		return fmt.Errorf("limits.relax_threshold must be non-negative, got %d", c.Limits.RelaxThreshold)
	}
	if c.Limits.RelaxThreshold > c.Limits.MaxResults {
		return fmt.Errorf("limits.relax_threshold must be <= limits.max_results, got %d > %d",
			c.Limits.RelaxThreshold, c.Limits.MaxResults)
	}
	if c.Limits.DefaultMinDuration < 1 || c.Limits.DefaultMaxDuration < c.Limits.DefaultMinDuration {
		return fmt.Errorf("invalid default duration window [%d, %d]",
			c.Limits.DefaultMinDuration, c.Limits.DefaultMaxDuration)
	}
	if c.Limits.MaxThemes < 1 {
		return fmt.Errorf("limits.max_themes must be positive, got %d", c.Limits.MaxThemes)
	}
	if c.Tolerances.BudgetCeiling < 1 {
		return fmt.Errorf("tolerances.budget_ceiling must be >= 1, got %f", c.Tolerances.BudgetCeiling)
	}
	if c.Tolerances.RelaxedBudgetCeiling < c.Tolerances.BudgetCeiling {
		return fmt.Errorf("tolerances.relaxed_budget_ceiling must be >= tolerances.budget_ceiling, got %f < %f",
			c.Tolerances.RelaxedBudgetCeiling, c.Tolerances.BudgetCeiling)
	}
	if c.Tolerances.Difficulty < 0 || c.Tolerances.RelaxedDifficulty < c.Tolerances.Difficulty {
		return fmt.Errorf("invalid difficulty tolerances [%d, %d]",
			c.Tolerances.Difficulty, c.Tolerances.RelaxedDifficulty)
	}
	if c.Tolerances.DurationGoodDays < c.Tolerances.DurationIdealDays {
		return fmt.Errorf("tolerances.duration_good_days must be >= tolerances.duration_ideal_days, got %d < %d",
			c.Tolerances.DurationGoodDays, c.Tolerances.DurationIdealDays)
	}
	if c.Tolerances.BudgetStretchRatio < c.Tolerances.BudgetNearRatio || c.Tolerances.BudgetNearRatio < 1 {
		return fmt.Errorf("invalid budget tier ratios [%f, %f]",
			c.Tolerances.BudgetNearRatio, c.Tolerances.BudgetStretchRatio)
	}
	if c.Tolerances.RelaxedMonthWindow < 0 {
		return fmt.Errorf("tolerances.relaxed_month_window must be non-negative, got %d", c.Tolerances.RelaxedMonthWindow)
	}
	if c.Weights.RelaxedPenalty < 0 {
		return fmt.Errorf("weights.relaxed_penalty must be non-negative, got %d", c.Weights.RelaxedPenalty)
	}
	if c.Thresholds.High < c.Thresholds.Mid {
		return fmt.Errorf("thresholds.high must be >= thresholds.mid, got %d < %d",
			c.Thresholds.High, c.Thresholds.Mid)
	}
	if c.SchedulelessTypeName == "" {
		return fmt.Errorf("scheduleless_type_name must not be empty")
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// Direct field copy - all nested structs contain only value types.
	out := *c
	return &out
}
