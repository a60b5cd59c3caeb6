// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathfinderhq/tripmatch/internal/models"
	"github.com/pathfinderhq/tripmatch/internal/recommend"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

// testSnapshot is a small catalog: two trekking trips in Nepal and Peru, one
// expedition, and one scheduleless private-group trip.
func testSnapshot() *Snapshot {
	nov := time.Date(2026, 11, 10, 0, 0, 0, 0, time.UTC)
	return &Snapshot{
		Countries: []models.Country{
			{ID: 1, Name: "Nepal", Continent: "Asia"},
			{ID: 2, Name: "Peru", Continent: "South America"},
			{ID: 3, Name: "Chile", Continent: "South America"},
		},
		TripTypes: []models.TripType{
			{ID: 1, Name: "Trekking"},
			{ID: 2, Name: "Expedition"},
			{ID: 3, Name: "Private Groups", Scheduleless: true},
		},
		Themes: []models.Theme{
			{ID: 1, Name: "Mountains"},
			{ID: 2, Name: "Culture"},
		},
		Guides: []models.Guide{
			{ID: 1, Name: "Maya Sherpa"},
		},
		Templates: []models.TripTemplate{
			{
				ID: 1, Title: "Annapurna Circuit", DifficultyLevel: 3,
				TypicalDurationDays: 14, BasePrice: 1800, TripTypeID: 1,
				ThemeIDs: []int64{1, 2}, CountryIDs: []int64{1}, CompanyID: 1,
			},
			{
				ID: 2, Title: "Inca Trail", DifficultyLevel: 2,
				TypicalDurationDays: 7, BasePrice: 1200, TripTypeID: 1,
				ThemeIDs: []int64{2}, CountryIDs: []int64{2}, CompanyID: 1,
			},
			{
				ID: 3, Title: "Patagonia Expedition", DifficultyLevel: 5,
				TypicalDurationDays: 21, BasePrice: 4500, TripTypeID: 2,
				ThemeIDs: []int64{1}, CountryIDs: []int64{2, 3}, CompanyID: 2,
			},
			{
				ID: 4, Title: "Custom Nepal Retreat", DifficultyLevel: 1,
				TypicalDurationDays: 10, BasePrice: 2200, TripTypeID: 3,
				ThemeIDs: []int64{2}, CountryIDs: []int64{1}, CompanyID: 1,
			},
		},
		Occurrences: []models.TripOccurrence{
			{ID: 10, TemplateID: 1, StartDate: nov, EndDate: nov.AddDate(0, 0, 14), Status: models.StatusOpen, SpotsLeft: 8, GuideID: 1},
			{ID: 11, TemplateID: 1, StartDate: nov.AddDate(0, 1, 0), EndDate: nov.AddDate(0, 1, 14), Status: models.StatusFull, SpotsLeft: 0},
			{ID: 12, TemplateID: 2, StartDate: nov.AddDate(0, 0, 5), EndDate: nov.AddDate(0, 0, 12), Status: models.StatusGuaranteed, SpotsLeft: 4, PriceOverride: 1350},
			{ID: 13, TemplateID: 3, StartDate: nov.AddDate(0, 2, 0), EndDate: nov.AddDate(0, 2, 21), Status: models.StatusLastPlaces, SpotsLeft: 2},
			{ID: 14, TemplateID: 4, Status: models.StatusOpen, SpotsLeft: 0}, // scheduleless, no dates
			{ID: 15, TemplateID: 2, StartDate: nov.AddDate(-1, 0, 0), EndDate: nov.AddDate(-1, 0, 7), Status: models.StatusOpen, SpotsLeft: 5},
		},
	}
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := newTestStore(t)
	require.NoError(t, store.Seed(context.Background(), testSnapshot()))
	return store
}

func TestStore_FindCandidates_All(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	candidates, err := store.FindCandidates(context.Background(), recommend.CatalogQuery{})
	require.NoError(t, err)
	require.Len(t, candidates, 6)

	byID := make(map[int64]recommend.TripCandidate, len(candidates))
	for _, c := range candidates {
		byID[c.Occurrence.ID] = c
	}

	annapurna := byID[10]
	assert.Equal(t, "Annapurna Circuit", annapurna.Template.Title)
	assert.Equal(t, "Trekking", annapurna.Template.TripTypeName)
	assert.Equal(t, "Maya Sherpa", annapurna.Occurrence.GuideName)
	assert.Equal(t, []int64{1, 2}, annapurna.Template.ThemeIDs)
	assert.Equal(t, []int64{1}, annapurna.Template.CountryIDs)
	assert.Equal(t, []string{"Asia"}, annapurna.Template.Continents)
	assert.False(t, annapurna.Scheduleless)

	private := byID[14]
	assert.True(t, private.Scheduleless)
	assert.True(t, private.Occurrence.StartDate.IsZero())

	patagonia := byID[13]
	assert.ElementsMatch(t, []string{"South America"}, patagonia.Template.Continents)
}

func TestStore_FindCandidates_Predicates(t *testing.T) {
	t.Parallel()

	dateFloor := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		query   recommend.CatalogQuery
		wantIDs []int64
	}{
		{
			name: "status exclusion drops full departures",
			query: recommend.CatalogQuery{
				ExcludeStatuses: []models.OccurrenceStatus{models.StatusFull, models.StatusCancelled},
			},
			wantIDs: []int64{10, 12, 13, 14, 15},
		},
		{
			name: "date floor drops past departures but keeps scheduleless",
			query: recommend.CatalogQuery{
				DepartureOnOrAfter: dateFloor,
			},
			wantIDs: []int64{10, 11, 12, 13, 14},
		},
		{
			name: "spots requirement keeps scheduleless with zero spots",
			query: recommend.CatalogQuery{
				RequireSpots: true,
			},
			wantIDs: []int64{10, 12, 13, 14, 15},
		},
		{
			name: "trip type restriction",
			query: recommend.CatalogQuery{
				TypeID: 2,
			},
			wantIDs: []int64{13},
		},
		{
			name: "price ceiling uses override when set",
			query: recommend.CatalogQuery{
				MaxPrice: 1400,
			},
			wantIDs: []int64{12, 15}, // Inca Trail occurrences: 1350 override and 1200 base
		},
		{
			name: "difficulty bounds",
			query: recommend.CatalogQuery{
				MinDifficulty: 2,
				MaxDifficulty: 3,
			},
			wantIDs: []int64{10, 11, 12, 15},
		},
		{
			name: "combined predicates",
			query: recommend.CatalogQuery{
				ExcludeStatuses:    []models.OccurrenceStatus{models.StatusFull, models.StatusCancelled},
				DepartureOnOrAfter: dateFloor,
				RequireSpots:       true,
				TypeID:             1,
				MaxPrice:           2000,
			},
			wantIDs: []int64{10, 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := seededStore(t)

			candidates, err := store.FindCandidates(context.Background(), tt.query)
			require.NoError(t, err)

			got := make([]int64, 0, len(candidates))
			for _, c := range candidates {
				got = append(got, c.Occurrence.ID)
			}
			assert.ElementsMatch(t, tt.wantIDs, got)
		})
	}
}

func TestStore_ResolveCountries(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	ctx := context.Background()

	countries, err := store.ResolveCountries(ctx, []int64{2, 1, 999})
	require.NoError(t, err)
	require.Len(t, countries, 2)

	// Input order preserved, unknown IDs dropped.
	assert.Equal(t, "Peru", countries[0].Name)
	assert.Equal(t, "South America", countries[0].Continent)
	assert.Equal(t, "Nepal", countries[1].Name)

	empty, err := store.ResolveCountries(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStore_ListTemplates(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	templates, err := store.ListTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 4)

	// Ordered by title.
	assert.Equal(t, "Annapurna Circuit", templates[0].Title)
	assert.Equal(t, "Custom Nepal Retreat", templates[1].Title)
	assert.Equal(t, "Inca Trail", templates[2].Title)
	assert.Equal(t, "Patagonia Expedition", templates[3].Title)

	assert.Equal(t, "Private Groups", templates[1].TripTypeName)
	assert.Equal(t, []string{"South America"}, templates[3].Continents)
}

func TestStore_GetTemplate(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	ctx := context.Background()

	tpl, occurrences, err := store.GetTemplate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Annapurna Circuit", tpl.Title)
	require.Len(t, occurrences, 2)
	// Soonest departure first.
	assert.Equal(t, int64(10), occurrences[0].ID)
	assert.Equal(t, int64(11), occurrences[1].ID)
	assert.Equal(t, "Maya Sherpa", occurrences[0].GuideName)

	_, _, err = store.GetTemplate(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ReferenceLists(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	ctx := context.Background()

	types, err := store.ListTripTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 3)
	assert.Equal(t, "Expedition", types[0].Name)
	assert.True(t, types[1].Scheduleless) // Private Groups

	themes, err := store.ListThemes(ctx)
	require.NoError(t, err)
	require.Len(t, themes, 2)

	countries, err := store.ListCountries(ctx)
	require.NoError(t, err)
	require.Len(t, countries, 3)
	assert.Equal(t, "Chile", countries[0].Name)
}

func TestStore_SaveTemplate_DerivesContinents(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTemplate(ctx, models.TripTemplate{
		ID: 50, Title: "Andes and Himalaya", DifficultyLevel: 4,
		TypicalDurationDays: 30, BasePrice: 6000, TripTypeID: 2,
		CountryIDs: []int64{1, 2, 3},
	}))

	tpl, _, err := store.GetTemplate(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"Asia", "South America"}, tpl.Continents)
}

func TestStore_Ping(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
