// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/pathfinderhq/tripmatch/internal/catalog"
	"github.com/pathfinderhq/tripmatch/internal/logging"
	"github.com/pathfinderhq/tripmatch/internal/metrics"
	"github.com/pathfinderhq/tripmatch/internal/models"
	"github.com/pathfinderhq/tripmatch/internal/recommend"
	"github.com/pathfinderhq/tripmatch/internal/validation"
)

// maxRequestBody bounds the recommendation request payload.
const maxRequestBody = 1 << 20 // 1 MiB

// Handler holds the request handlers and their collaborators.
type Handler struct {
	engine *recommend.Engine
	store  *catalog.Store
	logger zerolog.Logger
}

// NewHandler creates the API handler set.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(engine *recommend.Engine, store *catalog.Store, logger zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		store:  store,
		logger: logger.With().Str("component", "api").Logger(),
	}
}

// Recommend handles POST /api/v1/recommendations.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	start := time.Now()

	var input recommend.PreferenceInput
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		rw.BadRequest("invalid JSON payload")
		return
	}

	if verr := validation.ValidateStruct(&input); verr != nil {
		metrics.RecordRecommendation("validation_error", time.Since(start), 0, 0, false, false)
		rw.ValidationError(verr.Error(), verr.Fields)
		return
	}

	input.RequestID = logging.RequestIDFromContext(r.Context())

	resp, err := h.engine.Recommend(r.Context(), input)
	if err != nil {
		h.writeRecommendError(rw, r, start, err)
		return
	}

	metrics.RecordRecommendation("ok", time.Since(start),
		resp.Metadata.TotalCandidatesEvaluated, resp.Metadata.Stats.Top,
		resp.Metadata.HasRelaxedResults, resp.Metadata.HasNoResults)
	rw.Success(resp)
}

// writeRecommendError maps engine failures to HTTP status codes: preference
// validation to 400, catalog unavailability to 503, everything else to 500.
func (h *Handler) writeRecommendError(rw *ResponseWriter, r *http.Request, start time.Time, err error) {
	if ve, ok := recommend.IsValidationError(err); ok {
		metrics.RecordRecommendation("validation_error", time.Since(start), 0, 0, false, false)
		rw.ValidationError(ve.Error(), ve.Fields)
		return
	}
	if recommend.IsCatalogError(err) {
		metrics.RecordRecommendation("catalog_error", time.Since(start), 0, 0, false, false)
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("catalog unavailable")
		rw.ServiceUnavailable("catalog temporarily unavailable")
		return
	}

	metrics.RecordRecommendation("error", time.Since(start), 0, 0, false, false)
	logger := logging.Ctx(r.Context())
	logger.Error().Err(err).Msg("recommendation failed")
	rw.InternalError("recommendation failed")
}

// tripDetail is the GET /trips/{id} payload.
type tripDetail struct {
	Template    models.TripTemplate     `json:"template"`
	Occurrences []models.TripOccurrence `json:"occurrences"`
}

// ListTrips handles GET /api/v1/trips.
func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	start := time.Now()
	templates, err := h.store.ListTemplates(r.Context())
	metrics.RecordCatalogQuery("list_templates", time.Since(start), err)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("list trips failed")
		rw.InternalError("failed to list trips")
		return
	}

	rw.Success(templates)
}

// GetTrip handles GET /api/v1/trips/{id}.
func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		rw.BadRequest("trip id must be a positive integer")
		return
	}

	start := time.Now()
	tpl, occurrences, err := h.store.GetTemplate(r.Context(), id)
	metrics.RecordCatalogQuery("get_template", time.Since(start), err)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			rw.NotFound("trip not found")
			return
		}
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Int64("trip_id", id).Msg("get trip failed")
		rw.InternalError("failed to load trip")
		return
	}

	rw.Success(tripDetail{Template: tpl, Occurrences: occurrences})
}

// ListTripTypes handles GET /api/v1/trip-types.
func (h *Handler) ListTripTypes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	types, err := h.store.ListTripTypes(r.Context())
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("list trip types failed")
		rw.InternalError("failed to list trip types")
		return
	}
	rw.Success(types)
}

// ListThemes handles GET /api/v1/themes.
func (h *Handler) ListThemes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	themes, err := h.store.ListThemes(r.Context())
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("list themes failed")
		rw.InternalError("failed to list themes")
		return
	}
	rw.Success(themes)
}

// ListCountries handles GET /api/v1/countries.
func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	countries, err := h.store.ListCountries(r.Context())
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("list countries failed")
		rw.InternalError("failed to list countries")
		return
	}
	rw.Success(countries)
}

// HealthLive handles GET /api/v1/health/live. Always 200 while the process
// is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "ok"})
}

// HealthReady handles GET /api/v1/health/ready. Verifies the catalog is
// reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := h.store.Ping(r.Context()); err != nil {
		rw.ServiceUnavailable("catalog not reachable")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}
