// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package catalog

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/pathfinderhq/tripmatch/internal/models"
)

// Snapshot is a complete catalog fixture, used to seed a fresh database at
// startup and in tests.
type Snapshot struct {
	Countries   []models.Country        `json:"countries"`
	TripTypes   []models.TripType       `json:"trip_types"`
	Themes      []models.Theme          `json:"themes"`
	Guides      []models.Guide          `json:"guides"`
	Templates   []models.TripTemplate   `json:"templates"`
	Occurrences []models.TripOccurrence `json:"occurrences"`
}

// LoadSnapshot reads a snapshot from a JSON file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Seed upserts the snapshot in dependency order: reference tables first,
// then templates (which derive continents from countries), then occurrences.
func (s *Store) Seed(ctx context.Context, snap *Snapshot) error {
	for _, c := range snap.Countries {
		if err := s.SaveCountry(ctx, c); err != nil {
			return fmt.Errorf("seed country %d: %w", c.ID, err)
		}
	}
	for _, t := range snap.TripTypes {
		if err := s.SaveTripType(ctx, t); err != nil {
			return fmt.Errorf("seed trip type %d: %w", t.ID, err)
		}
	}
	for _, t := range snap.Themes {
		if err := s.SaveTheme(ctx, t); err != nil {
			return fmt.Errorf("seed theme %d: %w", t.ID, err)
		}
	}
	for _, g := range snap.Guides {
		if err := s.SaveGuide(ctx, g); err != nil {
			return fmt.Errorf("seed guide %d: %w", g.ID, err)
		}
	}
	for _, t := range snap.Templates {
		if err := s.SaveTemplate(ctx, t); err != nil {
			return fmt.Errorf("seed template %d: %w", t.ID, err)
		}
	}
	for _, o := range snap.Occurrences {
		if err := s.SaveOccurrence(ctx, o); err != nil {
			return fmt.Errorf("seed occurrence %d: %w", o.ID, err)
		}
	}

	s.logger.Info().
		Int("countries", len(snap.Countries)).
		Int("trip_types", len(snap.TripTypes)).
		Int("templates", len(snap.Templates)).
		Int("occurrences", len(snap.Occurrences)).
		Msg("catalog seeded")
	return nil
}
