// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

// Package models contains the catalog entities shared between the catalog
// store, the recommendation engine, and the API layer.
package models

import "time"

// OccurrenceStatus is the booking status of a scheduled trip departure.
type OccurrenceStatus string

const (
	// StatusOpen indicates the departure is bookable.
	StatusOpen OccurrenceStatus = "OPEN"
	// StatusGuaranteed indicates the departure has reached minimum group size.
	StatusGuaranteed OccurrenceStatus = "GUARANTEED"
	// StatusLastPlaces indicates only a few spots remain.
	StatusLastPlaces OccurrenceStatus = "LAST_PLACES"
	// StatusFull indicates the departure is sold out.
	StatusFull OccurrenceStatus = "FULL"
	// StatusCancelled indicates the departure was cancelled.
	StatusCancelled OccurrenceStatus = "CANCELLED"
)

// Valid reports whether s is one of the known statuses.
func (s OccurrenceStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusGuaranteed, StatusLastPlaces, StatusFull, StatusCancelled:
		return true
	default:
		return false
	}
}

// Bookable reports whether a departure in this status can still be offered.
func (s OccurrenceStatus) Bookable() bool {
	return s != StatusFull && s != StatusCancelled
}

// TripTemplate is the reusable definition of a trip's content, independent of
// specific departure dates.
type TripTemplate struct {
	ID                  int64   `json:"id"`
	Title               string  `json:"title"`
	DifficultyLevel     int     `json:"difficulty_level"` // 1-5
	TypicalDurationDays int     `json:"typical_duration_days"`
	BasePrice           float64 `json:"base_price"`
	TripTypeID          int64   `json:"trip_type_id"`
	TripTypeName        string  `json:"trip_type_name"`
	ThemeIDs            []int64 `json:"theme_ids"`
	CountryIDs          []int64 `json:"country_ids"` // primary + secondary
	Continents          []string `json:"continents"` // derived from CountryIDs
	CompanyID           int64   `json:"company_id"`
}

// TripOccurrence is a specific scheduled, bookable instance of a template.
type TripOccurrence struct {
	ID            int64            `json:"id"`
	TemplateID    int64            `json:"template_id"`
	StartDate     time.Time        `json:"start_date"`
	EndDate       time.Time        `json:"end_date"`
	Status        OccurrenceStatus `json:"status"`
	SpotsLeft     int              `json:"spots_left"`
	PriceOverride float64          `json:"price_override,omitempty"` // 0 = inherit base price
	GuideID       int64            `json:"guide_id"`
	GuideName     string           `json:"guide_name"`
}

// EffectivePrice returns the occurrence price override when set, otherwise
// the template base price.
func (o TripOccurrence) EffectivePrice(t TripTemplate) float64 {
	if o.PriceOverride > 0 {
		return o.PriceOverride
	}
	return t.BasePrice
}

// TripType is a catalog trip style (trekking, expedition, private groups...).
type TripType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// Scheduleless marks types whose occurrences have no fixed departure
	// date ("Private Groups"); date and capacity filters do not apply.
	Scheduleless bool `json:"scheduleless"`
}

// Country is a destination country with its continent.
type Country struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Continent string `json:"continent"`
}

// Theme is a content tag attached to templates (wildlife, culture, polar...).
type Theme struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Guide leads a scheduled departure.
type Guide struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
