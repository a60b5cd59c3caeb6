// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package recommend

import (
	"testing"

	"github.com/pathfinderhq/tripmatch/internal/models"
)

func TestRelaxContext(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	pctx := testContext(func(p *PreferenceContext) {
		p.TypeID = 3
		p.Difficulty = 2
		p.Budget = 1000
		p.Year, p.Month = 2026, 11
	})

	rctx := RelaxContext(cfg, pctx)

	if !rctx.Relaxed {
		t.Error("Relaxed = false, want true")
	}
	if rctx.BudgetCeiling != cfg.Tolerances.RelaxedBudgetCeiling {
		t.Errorf("BudgetCeiling = %v, want %v", rctx.BudgetCeiling, cfg.Tolerances.RelaxedBudgetCeiling)
	}
	if rctx.DifficultyTol != cfg.Tolerances.RelaxedDifficulty {
		t.Errorf("DifficultyTol = %d, want %d", rctx.DifficultyTol, cfg.Tolerances.RelaxedDifficulty)
	}
	if rctx.MonthWindow != cfg.Tolerances.RelaxedMonthWindow {
		t.Errorf("MonthWindow = %d, want %d", rctx.MonthWindow, cfg.Tolerances.RelaxedMonthWindow)
	}

	// The preference fields themselves are untouched.
	if rctx.TypeID != 3 || rctx.Difficulty != 2 || rctx.Budget != 1000 {
		t.Errorf("preference fields changed: %+v", rctx)
	}
	if rctx.Year != 2026 || rctx.Month != 11 {
		t.Errorf("year/month changed: %d/%d", rctx.Year, rctx.Month)
	}

	// The primary context is not mutated.
	if pctx.Relaxed || pctx.MonthWindow != 0 {
		t.Error("RelaxContext() mutated its input")
	}
}

func TestRelaxContext_WidensCountriesToContinents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		countries  []models.Country
		continents []string
		want       []string
	}{
		{
			name: "country-only selection gains its continents",
			countries: []models.Country{
				{ID: 1, Name: "Nepal", Continent: "Asia"},
				{ID: 2, Name: "Peru", Continent: "South America"},
			},
			want: []string{"Asia", "South America"},
		},
		{
			name: "existing continents kept and deduplicated",
			countries: []models.Country{
				{ID: 1, Name: "Nepal", Continent: "Asia"},
			},
			continents: []string{"Asia", "Europe"},
			want:       []string{"Asia", "Europe"},
		},
		{
			name: "country without continent contributes nothing",
			countries: []models.Country{
				{ID: 1, Name: "Atlantis"},
			},
			want: []string{},
		},
		{
			name: "empty selection stays empty",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pctx := testContext(func(p *PreferenceContext) {
				p.Countries = tt.countries
				p.Continents = tt.continents
			})

			rctx := RelaxContext(DefaultConfig(), pctx)

			if len(rctx.Continents) != len(tt.want) {
				t.Fatalf("Continents = %v, want %v", rctx.Continents, tt.want)
			}
			for i := range tt.want {
				if rctx.Continents[i] != tt.want[i] {
					t.Errorf("Continents[%d] = %q, want %q", i, rctx.Continents[i], tt.want[i])
				}
			}
			if len(rctx.Countries) != len(tt.countries) {
				t.Errorf("Countries = %v, want unchanged", rctx.Countries)
			}
		})
	}
}
