// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

// Package catalog implements the SQLite-backed trip catalog. It is the
// production implementation of recommend.CatalogProvider and also serves the
// read-only browse endpoints of the API.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pathfinderhq/tripmatch/internal/models"
	"github.com/pathfinderhq/tripmatch/internal/recommend"
)

// Store is a SQLite-backed catalog. Safe for concurrent use; the underlying
// *sql.DB handles pooling.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open opens (or creates) the catalog database at path. Use ":memory:" for
// an ephemeral catalog in tests.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(path string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_loc=UTC")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With().Str("component", "catalog").Logger(),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database is reachable. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the catalog tables and indexes when absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS countries (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			continent TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trip_types (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			scheduleless INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS themes (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS guides (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trip_templates (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			difficulty_level INTEGER NOT NULL,
			typical_duration_days INTEGER NOT NULL,
			base_price REAL NOT NULL,
			trip_type_id INTEGER NOT NULL REFERENCES trip_types(id),
			company_id INTEGER NOT NULL DEFAULT 0,
			theme_ids_json TEXT NOT NULL DEFAULT '[]',
			country_ids_json TEXT NOT NULL DEFAULT '[]',
			continents_json TEXT NOT NULL DEFAULT '[]'
		);`,
		`CREATE TABLE IF NOT EXISTS trip_occurrences (
			id INTEGER PRIMARY KEY,
			template_id INTEGER NOT NULL REFERENCES trip_templates(id),
			start_date TIMESTAMP,
			end_date TIMESTAMP,
			status TEXT NOT NULL,
			spots_left INTEGER NOT NULL DEFAULT 0,
			price_override REAL NOT NULL DEFAULT 0,
			guide_id INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_occurrences_template ON trip_occurrences(template_id);`,
		`CREATE INDEX IF NOT EXISTS idx_occurrences_start ON trip_occurrences(start_date);`,
		`CREATE INDEX IF NOT EXISTS idx_occurrences_status ON trip_occurrences(status);`,
		`CREATE INDEX IF NOT EXISTS idx_templates_type ON trip_templates(trip_type_id);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveCountry upserts a country.
func (s *Store) SaveCountry(ctx context.Context, c models.Country) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO countries (id, name, continent) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.Continent)
	return err
}

// SaveTripType upserts a trip type.
func (s *Store) SaveTripType(ctx context.Context, t models.TripType) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO trip_types (id, name, scheduleless) VALUES (?, ?, ?)`,
		t.ID, t.Name, t.Scheduleless)
	return err
}

// SaveTheme upserts a theme.
func (s *Store) SaveTheme(ctx context.Context, t models.Theme) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO themes (id, name) VALUES (?, ?)`,
		t.ID, t.Name)
	return err
}

// SaveGuide upserts a guide.
func (s *Store) SaveGuide(ctx context.Context, g models.Guide) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO guides (id, name) VALUES (?, ?)`,
		g.ID, g.Name)
	return err
}

// SaveTemplate upserts a trip template. The template's continent list is
// derived from its countries at save time, so reads never need the join.
func (s *Store) SaveTemplate(ctx context.Context, t models.TripTemplate) error {
	continents, err := s.continentsOf(ctx, t.CountryIDs)
	if err != nil {
		return fmt.Errorf("derive continents: %w", err)
	}

	themes, err := json.Marshal(t.ThemeIDs)
	if err != nil {
		return fmt.Errorf("encode themes: %w", err)
	}
	countries, err := json.Marshal(t.CountryIDs)
	if err != nil {
		return fmt.Errorf("encode countries: %w", err)
	}
	conts, err := json.Marshal(continents)
	if err != nil {
		return fmt.Errorf("encode continents: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trip_templates
		(id, title, difficulty_level, typical_duration_days, base_price,
		 trip_type_id, company_id, theme_ids_json, country_ids_json, continents_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.DifficultyLevel, t.TypicalDurationDays, t.BasePrice,
		t.TripTypeID, t.CompanyID, string(themes), string(countries), string(conts))
	return err
}

// SaveOccurrence upserts a scheduled departure.
func (s *Store) SaveOccurrence(ctx context.Context, o models.TripOccurrence) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trip_occurrences
		(id, template_id, start_date, end_date, status, spots_left, price_override, guide_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.TemplateID, nullableTime(o.StartDate), nullableTime(o.EndDate),
		string(o.Status), o.SpotsLeft, o.PriceOverride, o.GuideID)
	return err
}

// candidateSelect joins occurrences with their template, trip type, and
// guide. The effective price expression mirrors TripOccurrence.EffectivePrice.
const candidateSelect = `
	SELECT o.id, o.template_id, o.start_date, o.end_date, o.status,
	       o.spots_left, o.price_override, o.guide_id, COALESCE(g.name, ''),
	       t.id, t.title, t.difficulty_level, t.typical_duration_days,
	       t.base_price, t.trip_type_id, tt.name, t.company_id,
	       t.theme_ids_json, t.country_ids_json, t.continents_json,
	       tt.scheduleless
	FROM trip_occurrences o
	JOIN trip_templates t ON t.id = o.template_id
	JOIN trip_types tt ON tt.id = t.trip_type_id
	LEFT JOIN guides g ON g.id = o.guide_id`

// FindCandidates implements recommend.CatalogProvider. It applies the coarse
// SQL predicates of the query; the engine re-checks the full rule set in
// memory, so returning a superset is fine. Scheduleless trip types bypass the
// date and capacity predicates.
func (s *Store) FindCandidates(ctx context.Context, q recommend.CatalogQuery) ([]recommend.TripCandidate, error) {
	var (
		where []string
		args  []any
	)

	if len(q.ExcludeStatuses) > 0 {
		marks := make([]string, len(q.ExcludeStatuses))
		for i, st := range q.ExcludeStatuses {
			marks[i] = "?"
			args = append(args, string(st))
		}
		where = append(where, fmt.Sprintf("o.status NOT IN (%s)", strings.Join(marks, ", ")))
	}
	if !q.DepartureOnOrAfter.IsZero() {
		where = append(where, "(tt.scheduleless = 1 OR o.start_date >= ?)")
		args = append(args, q.DepartureOnOrAfter)
	}
	if q.RequireSpots {
		where = append(where, "(tt.scheduleless = 1 OR o.spots_left > 0)")
	}
	if q.TypeID != 0 {
		where = append(where, "t.trip_type_id = ?")
		args = append(args, q.TypeID)
	}
	if q.MaxPrice > 0 {
		where = append(where, "(CASE WHEN o.price_override > 0 THEN o.price_override ELSE t.base_price END) <= ?")
		args = append(args, q.MaxPrice)
	}
	if q.MinDifficulty > 0 && q.MaxDifficulty > 0 {
		where = append(where, "t.difficulty_level BETWEEN ? AND ?")
		args = append(args, q.MinDifficulty, q.MaxDifficulty)
	}

	query := candidateSelect
	if len(where) > 0 {
		query += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\tORDER BY o.start_date, o.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []recommend.TripCandidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}

	s.logger.Debug().Int("count", len(out)).Msg("candidates fetched")
	return out, nil
}

// ResolveCountries implements recommend.CatalogProvider. Input order is
// preserved; unknown IDs are silently dropped.
func (s *Store) ResolveCountries(ctx context.Context, ids []int64) ([]models.Country, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, name, continent FROM countries WHERE id IN (%s)`, strings.Join(marks, ", ")),
		args...)
	if err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]models.Country, len(ids))
	for rows.Next() {
		var c models.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.Continent); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate countries: %w", err)
	}

	out := make([]models.Country, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListTemplates returns every trip template, ordered by title.
func (s *Store) ListTemplates(ctx context.Context) ([]models.TripTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.difficulty_level, t.typical_duration_days,
		       t.base_price, t.trip_type_id, tt.name, t.company_id,
		       t.theme_ids_json, t.country_ids_json, t.continents_json
		FROM trip_templates t
		JOIN trip_types tt ON tt.id = t.trip_type_id
		ORDER BY t.title, t.id`)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var out []models.TripTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return out, nil
}

// ErrNotFound is returned by GetTemplate for unknown IDs.
var ErrNotFound = sql.ErrNoRows

// GetTemplate returns one template and its scheduled occurrences, soonest
// departure first.
func (s *Store) GetTemplate(ctx context.Context, id int64) (models.TripTemplate, []models.TripOccurrence, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT t.id, t.title, t.difficulty_level, t.typical_duration_days,
		       t.base_price, t.trip_type_id, tt.name, t.company_id,
		       t.theme_ids_json, t.country_ids_json, t.continents_json
		FROM trip_templates t
		JOIN trip_types tt ON tt.id = t.trip_type_id
		WHERE t.id = ?`, id)

	tpl, err := scanTemplate(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.TripTemplate{}, nil, ErrNotFound
		}
		return models.TripTemplate{}, nil, fmt.Errorf("get template: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.template_id, o.start_date, o.end_date, o.status,
		       o.spots_left, o.price_override, o.guide_id, COALESCE(g.name, '')
		FROM trip_occurrences o
		LEFT JOIN guides g ON g.id = o.guide_id
		WHERE o.template_id = ?
		ORDER BY o.start_date, o.id`, id)
	if err != nil {
		return models.TripTemplate{}, nil, fmt.Errorf("query occurrences: %w", err)
	}
	defer rows.Close()

	var occurrences []models.TripOccurrence
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return models.TripTemplate{}, nil, fmt.Errorf("scan occurrence: %w", err)
		}
		occurrences = append(occurrences, o)
	}
	if err := rows.Err(); err != nil {
		return models.TripTemplate{}, nil, fmt.Errorf("iterate occurrences: %w", err)
	}

	return tpl, occurrences, nil
}

// ListTripTypes returns every trip type, ordered by name.
func (s *Store) ListTripTypes(ctx context.Context) ([]models.TripType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, scheduleless FROM trip_types ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query trip types: %w", err)
	}
	defer rows.Close()

	var out []models.TripType
	for rows.Next() {
		var t models.TripType
		if err := rows.Scan(&t.ID, &t.Name, &t.Scheduleless); err != nil {
			return nil, fmt.Errorf("scan trip type: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListThemes returns every theme, ordered by name.
func (s *Store) ListThemes(ctx context.Context) ([]models.Theme, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM themes ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query themes: %w", err)
	}
	defer rows.Close()

	var out []models.Theme
	for rows.Next() {
		var t models.Theme
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListCountries returns every country, ordered by name.
func (s *Store) ListCountries(ctx context.Context) ([]models.Country, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, continent FROM countries ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}
	defer rows.Close()

	var out []models.Country
	for rows.Next() {
		var c models.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.Continent); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// continentsOf resolves the distinct continents of the given countries,
// preserving first-seen order.
func (s *Store) continentsOf(ctx context.Context, countryIDs []int64) ([]string, error) {
	if len(countryIDs) == 0 {
		return []string{}, nil
	}

	countries, err := s.ResolveCountries(ctx, countryIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(countries))
	out := make([]string, 0, len(countries))
	for _, c := range countries {
		if c.Continent == "" {
			continue
		}
		if _, ok := seen[c.Continent]; ok {
			continue
		}
		seen[c.Continent] = struct{}{}
		out = append(out, c.Continent)
	}
	return out, nil
}
