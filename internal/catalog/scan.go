// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package catalog

import (
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/pathfinderhq/tripmatch/internal/models"
	"github.com/pathfinderhq/tripmatch/internal/recommend"
)

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// nullableTime maps the zero time to NULL. Scheduleless occurrences carry no
// departure date.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func scanCandidate(sc scanner) (recommend.TripCandidate, error) {
	var (
		c          recommend.TripCandidate
		start, end sql.NullTime
		status     string
	)
	var themesJSON, countriesJSON, continentsJSON string

	err := sc.Scan(
		&c.Occurrence.ID, &c.Occurrence.TemplateID, &start, &end, &status,
		&c.Occurrence.SpotsLeft, &c.Occurrence.PriceOverride,
		&c.Occurrence.GuideID, &c.Occurrence.GuideName,
		&c.Template.ID, &c.Template.Title, &c.Template.DifficultyLevel,
		&c.Template.TypicalDurationDays, &c.Template.BasePrice,
		&c.Template.TripTypeID, &c.Template.TripTypeName, &c.Template.CompanyID,
		&themesJSON, &countriesJSON, &continentsJSON,
		&c.Scheduleless,
	)
	if err != nil {
		return recommend.TripCandidate{}, err
	}

	c.Occurrence.Status = models.OccurrenceStatus(status)
	if start.Valid {
		c.Occurrence.StartDate = start.Time.UTC()
	}
	if end.Valid {
		c.Occurrence.EndDate = end.Time.UTC()
	}

	if err := decodeTemplateLists(&c.Template, themesJSON, countriesJSON, continentsJSON); err != nil {
		return recommend.TripCandidate{}, err
	}
	return c, nil
}

func scanTemplate(sc scanner) (models.TripTemplate, error) {
	var t models.TripTemplate
	var themesJSON, countriesJSON, continentsJSON string

	err := sc.Scan(
		&t.ID, &t.Title, &t.DifficultyLevel, &t.TypicalDurationDays,
		&t.BasePrice, &t.TripTypeID, &t.TripTypeName, &t.CompanyID,
		&themesJSON, &countriesJSON, &continentsJSON,
	)
	if err != nil {
		return models.TripTemplate{}, err
	}

	if err := decodeTemplateLists(&t, themesJSON, countriesJSON, continentsJSON); err != nil {
		return models.TripTemplate{}, err
	}
	return t, nil
}

func scanOccurrence(sc scanner) (models.TripOccurrence, error) {
	var (
		o          models.TripOccurrence
		start, end sql.NullTime
		status     string
	)

	err := sc.Scan(
		&o.ID, &o.TemplateID, &start, &end, &status,
		&o.SpotsLeft, &o.PriceOverride, &o.GuideID, &o.GuideName,
	)
	if err != nil {
		return models.TripOccurrence{}, err
	}

	o.Status = models.OccurrenceStatus(status)
	if start.Valid {
		o.StartDate = start.Time.UTC()
	}
	if end.Valid {
		o.EndDate = end.Time.UTC()
	}
	return o, nil
}

func decodeTemplateLists(t *models.TripTemplate, themesJSON, countriesJSON, continentsJSON string) error {
	if err := json.Unmarshal([]byte(themesJSON), &t.ThemeIDs); err != nil {
		return fmt.Errorf("decode themes: %w", err)
	}
	if err := json.Unmarshal([]byte(countriesJSON), &t.CountryIDs); err != nil {
		return fmt.Errorf("decode countries: %w", err)
	}
	if err := json.Unmarshal([]byte(continentsJSON), &t.Continents); err != nil {
		return fmt.Errorf("decode continents: %w", err)
	}
	return nil
}
