// Package handlers provides HTTP handlers for merchant price curves.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/halcyon-energy/halcyon/internal/domain"
	"github.com/halcyon-energy/halcyon/internal/modules/intervals"
	"github.com/halcyon-energy/halcyon/internal/modules/pricing"
)

// Handler handles price curve HTTP requests.
type Handler struct {
	repo     *pricing.Repository
	service  *pricing.Service
	defaults domain.Constants
	log      zerolog.Logger
}

// NewHandler creates a new pricing handler.
func NewHandler(repo *pricing.Repository, service *pricing.Service, defaults domain.Constants, log zerolog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		service:  service,
		defaults: defaults,
		log:      log.With().Str("handler", "pricing").Logger(),
	}
}

// PricePoint is one row of an uploaded price curve.
type PricePoint struct {
	Profile     string  `json:"profile"`
	ProductType string  `json:"productType"`
	State       string  `json:"state"`
	Period      string  `json:"period"`
	Price       float64 `json:"price"`
}

// HandleGetCurve handles GET /api/prices/{profile}?state=NSW.
func (h *Handler) HandleGetCurve(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")
	state := r.URL.Query().Get("state")
	if state == "" {
		http.Error(w, "state query parameter is required", http.StatusBadRequest)
		return
	}

	curve, err := h.repo.CurveForProfile(profile, state)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
		"state":   state,
		"curve":   curve,
	})
}

// HandleUpsertPrices handles POST /api/prices with a batch of price points.
func (h *Handler) HandleUpsertPrices(w http.ResponseWriter, r *http.Request) {
	var points []PricePoint
	if err := json.NewDecoder(r.Body).Decode(&points); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if len(points) == 0 {
		http.Error(w, "at least one price point is required", http.StatusBadRequest)
		return
	}

	batch := make([]pricing.CurvePoint, 0, len(points))
	for i, p := range points {
		if p.Profile == "" || p.State == "" || p.Period == "" {
			http.Error(w, fmt.Sprintf("point %d: profile, state and period are required", i), http.StatusBadRequest)
			return
		}
		batch = append(batch, pricing.CurvePoint{
			Profile:     p.Profile,
			ProductType: p.ProductType,
			State:       p.State,
			Period:      p.Period,
			Price:       p.Price,
		})
	}

	// The whole upload lands atomically.
	if err := h.repo.UpsertBatch(batch); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.log.Info().Int("points", len(points)).Msg("price curve updated")
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"stored": len(points)})
}

// HandleStorageSpread handles GET /api/prices/storage/spread?duration=2&state=NSW&period=2025.
// Useful for sanity-checking the duration interpolation from the UI.
func (h *Handler) HandleStorageSpread(w http.ResponseWriter, r *http.Request) {
	duration, err := strconv.ParseFloat(r.URL.Query().Get("duration"), 64)
	if err != nil || duration <= 0 {
		http.Error(w, "positive duration query parameter is required", http.StatusBadRequest)
		return
	}
	state := r.URL.Query().Get("state")
	label := r.URL.Query().Get("period")
	if state == "" || label == "" {
		http.Error(w, "state and period query parameters are required", http.StatusBadRequest)
		return
	}

	period, err := intervals.Parse(label)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	spread := h.service.StorageSpread(state, duration, period, h.defaults)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"duration": duration,
		"state":    state,
		"period":   label,
		"spread":   spread,
	})
}

// writeJSON writes a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
