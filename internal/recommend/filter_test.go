// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package recommend

import (
	"testing"
	"time"

	"github.com/pathfinderhq/tripmatch/internal/models"
)

func TestMatchesFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		pctx      *PreferenceContext
		candidate TripCandidate
		want      bool
	}{
		{
			name:      "default candidate passes empty context",
			pctx:      testContext(),
			candidate: testCandidate(1),
			want:      true,
		},
		{
			name: "full occurrence excluded",
			pctx: testContext(),
			candidate: testCandidate(1, func(c *TripCandidate) {
				c.Occurrence.Status = models.StatusFull
			}),
			want: false,
		},
		{
			name: "cancelled occurrence excluded",
			pctx: testContext(),
			candidate: testCandidate(1, func(c *TripCandidate) {
				c.Occurrence.Status = models.StatusCancelled
			}),
			want: false,
		},
		{
			name: "past departure excluded",
			pctx: testContext(),
			candidate: testCandidate(1, func(c *TripCandidate) {
				c.Occurrence.StartDate = fixedNow.AddDate(0, 0, -1)
			}),
			want: false,
		},
		{
			name: "departure earlier today still passes",
			pctx: testContext(),
			candidate: testCandidate(1, func(c *TripCandidate) {
				c.Occurrence.StartDate = time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)
			}),
			want: true,
		},
		{
			name: "no spots left excluded",
			pctx: testContext(),
			candidate: testCandidate(1, func(c *TripCandidate) {
				c.Occurrence.SpotsLeft = 0
			}),
			want: false,
		},
		{
			name: "scheduleless skips date and capacity rules",
			pctx: testContext(func(p *PreferenceContext) {
				p.Year, p.Month = 2027, 3
			}),
			candidate: testCandidate(1, func(c *TripCandidate) {
				c.Scheduleless = true
				c.Occurrence.StartDate = time.Time{}
				c.Occurrence.SpotsLeft = 0
			}),
			want: true,
		},
		{
			name: "trip type mismatch excluded in primary",
			pctx: testContext(func(p *PreferenceContext) {
				p.TypeID = 2
			}),
			candidate: testCandidate(1),
			want:      false,
		},
		{
			name: "trip type mismatch allowed when relaxed",
			pctx: testContext(func(p *PreferenceContext) {
				p.TypeID = 2
				p.Relaxed = true
			}),
			candidate: testCandidate(1),
			want:      true,
		},
		{
			name: "country selection requires intersection",
			pctx: testContext(func(p *PreferenceContext) {
				p.Countries = []models.Country{{ID: 99, Name: "Chile", Continent: "South America"}}
			}),
			candidate: testCandidate(1),
			want:      false,
		},
		{
			name: "country hit passes",
			pctx: testContext(func(p *PreferenceContext) {
				p.Countries = []models.Country{{ID: 10, Name: "Nepal", Continent: "Asia"}}
			}),
			candidate: testCandidate(1),
			want:      true,
		},
		{
			name: "continent hit passes without country hit",
			pctx: testContext(func(p *PreferenceContext) {
				p.Countries = []models.Country{{ID: 99, Name: "Chile", Continent: "South America"}}
				p.Continents = []string{"Asia"}
			}),
			candidate: testCandidate(1),
			want:      true,
		},
		{
			name: "difficulty within one passes primary",
			pctx: testContext(func(p *PreferenceContext) {
				p.Difficulty = 2
			}),
			candidate: testCandidate(1, func(c *TripCandidate) {
				c.Template.DifficultyLevel = 3
			}),
			want: true,
		},
		{
			name: "difficulty off by two excluded in primary",
			pctx: testContext(func(p *PreferenceContext) {
				p.Difficulty = 2
			}),
			candidate: testCandidate(1, func(c *TripCandidate) {
				c.Template.DifficultyLevel = 4
			}),
			want: false,
		},
		{
			name: "difficulty off by two passes when relaxed",
			pctx: testContext(func(p *PreferenceContext) {
				p.Difficulty = 2
				p.Relaxed = true
				p.DifficultyTol = 2
			}),
			candidate: testCandidate(1, func(c *TripCandidate) {
				c.Template.DifficultyLevel = 4
			}),
			want: true,
		},
		{
			name: "price at 130 percent of budget passes",
			pctx: testContext(func(p *PreferenceContext) {
				p.Budget = 1000
			}),
			candidate: testCandidate(1, func(c *TripCandidate) {
				c.Template.BasePrice = 1300
			}),
			want: true,
		},
		{
			name: "price above 130 percent excluded",
			pctx: testContext(func(p *PreferenceContext) {
				p.Budget = 1000
			}),
			candidate: testCandidate(1, func(c *TripCandidate) {
				c.Template.BasePrice = 1301
			}),
			want: false,
		},
		{
			name: "relaxed ceiling admits up to 150 percent",
			pctx: testContext(func(p *PreferenceContext) {
				p.Budget = 1000
				p.Relaxed = true
				p.BudgetCeiling = 1.50
			}),
			candidate: testCandidate(1, func(c *TripCandidate) {
				c.Template.BasePrice = 1450
			}),
			want: true,
		},
		{
			name: "zero budget never filters on price",
			pctx: testContext(),
			candidate: testCandidate(1, func(c *TripCandidate) {
				c.Template.BasePrice = 99999
			}),
			want: true,
		},
		{
			name: "exact year and month match",
			pctx: testContext(func(p *PreferenceContext) {
				p.Year, p.Month = 2026, 11
			}),
			candidate: testCandidate(1), // departs 2026-11-01
			want:      true,
		},
		{
			name: "adjacent month excluded without window",
			pctx: testContext(func(p *PreferenceContext) {
				p.Year, p.Month = 2026, 12
			}),
			candidate: testCandidate(1),
			want:      false,
		},
		{
			name: "adjacent month passes with relaxed window",
			pctx: testContext(func(p *PreferenceContext) {
				p.Year, p.Month = 2026, 12
				p.MonthWindow = 2
			}),
			candidate: testCandidate(1),
			want:      true,
		},
		{
			name: "month window crosses year boundary",
			pctx: testContext(func(p *PreferenceContext) {
				p.Year, p.Month = 2027, 1
				p.MonthWindow = 2
			}),
			candidate: testCandidate(1), // 2026-11, two months earlier
			want:      true,
		},
		{
			name: "year filter matches any month of that year",
			pctx: testContext(func(p *PreferenceContext) {
				p.Year = 2026
			}),
			candidate: testCandidate(1),
			want:      true,
		},
		{
			name: "year filter excludes other years",
			pctx: testContext(func(p *PreferenceContext) {
				p.Year = 2027
			}),
			candidate: testCandidate(1),
			want:      false,
		},
		{
			name: "year window admits adjacent december",
			pctx: testContext(func(p *PreferenceContext) {
				p.Year = 2027
				p.MonthWindow = 2
			}),
			candidate: testCandidate(1), // 2026-11, within two months of 2027
			want:      true,
		},
		{
			name: "month-only filter matches any year",
			pctx: testContext(func(p *PreferenceContext) {
				p.Month = 11
			}),
			candidate: testCandidate(1),
			want:      true,
		},
		{
			name: "month-only window wraps around december",
			pctx: testContext(func(p *PreferenceContext) {
				p.Month = 12
				p.MonthWindow = 1
			}),
			candidate: testCandidate(1, func(c *TripCandidate) {
				c.Occurrence.StartDate = time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC)
			}),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MatchesFilter(tt.pctx, tt.candidate, fixedNow); got != tt.want {
				t.Errorf("MatchesFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	t.Parallel()

	pctx := testContext(func(p *PreferenceContext) {
		p.Difficulty = 2
	})
	in := []TripCandidate{
		testCandidate(1),
		testCandidate(2, func(c *TripCandidate) { c.Template.DifficultyLevel = 5 }),
		testCandidate(3),
		testCandidate(4, func(c *TripCandidate) { c.Occurrence.Status = models.StatusFull }),
		testCandidate(5),
	}

	out := Filter(pctx, in, fixedNow)
	wantIDs := []int64{1, 3, 5}
	if len(out) != len(wantIDs) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(wantIDs))
	}
	for i, id := range wantIDs {
		if out[i].Occurrence.ID != id {
			t.Errorf("out[%d].ID = %d, want %d", i, out[i].Occurrence.ID, id)
		}
	}
}

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	t.Run("primary context", func(t *testing.T) {
		t.Parallel()
		pctx := testContext(func(p *PreferenceContext) {
			p.TypeID = 3
			p.Budget = 1000
			p.Difficulty = 1
		})

		q := BuildQuery(pctx, fixedNow)

		if len(q.ExcludeStatuses) != 2 {
			t.Errorf("ExcludeStatuses = %v, want FULL and CANCELLED", q.ExcludeStatuses)
		}
		if !q.DepartureOnOrAfter.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("DepartureOnOrAfter = %v, want start of day", q.DepartureOnOrAfter)
		}
		if !q.RequireSpots {
			t.Error("RequireSpots = false, want true")
		}
		if q.TypeID != 3 {
			t.Errorf("TypeID = %d, want 3", q.TypeID)
		}
		if q.MaxPrice != 1300 {
			t.Errorf("MaxPrice = %v, want 1300", q.MaxPrice)
		}
		if q.MinDifficulty != 1 || q.MaxDifficulty != 2 {
			t.Errorf("difficulty bounds = [%d, %d], want [1, 2]", q.MinDifficulty, q.MaxDifficulty)
		}
	})

	t.Run("relaxed context drops type and widens bounds", func(t *testing.T) {
		t.Parallel()
		pctx := testContext(func(p *PreferenceContext) {
			p.TypeID = 3
			p.Budget = 1000
			p.Difficulty = 3
		})
		rctx := RelaxContext(DefaultConfig(), pctx)

		q := BuildQuery(rctx, fixedNow)

		if q.TypeID != 0 {
			t.Errorf("TypeID = %d, want 0 in relaxed mode", q.TypeID)
		}
		if q.MaxPrice != 1500 {
			t.Errorf("MaxPrice = %v, want 1500", q.MaxPrice)
		}
		if q.MinDifficulty != 1 || q.MaxDifficulty != 5 {
			t.Errorf("difficulty bounds = [%d, %d], want [1, 5]", q.MinDifficulty, q.MaxDifficulty)
		}
	})

	t.Run("unset preferences leave bounds open", func(t *testing.T) {
		t.Parallel()
		q := BuildQuery(testContext(), fixedNow)

		if q.TypeID != 0 || q.MaxPrice != 0 || q.MinDifficulty != 0 || q.MaxDifficulty != 0 {
			t.Errorf("query bounds should be open, got %+v", q)
		}
	})
}

func TestMonthIndex(t *testing.T) {
	t.Parallel()

	if got := monthIndex(2026, 12) - monthIndex(2026, 11); got != 1 {
		t.Errorf("consecutive months differ by %d, want 1", got)
	}
	if got := monthIndex(2027, 1) - monthIndex(2026, 12); got != 1 {
		t.Errorf("year boundary differs by %d, want 1", got)
	}
}
