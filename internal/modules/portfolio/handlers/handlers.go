// Package handlers provides HTTP handlers for portfolio calculations.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/halcyon-energy/halcyon/internal/domain"
	"github.com/halcyon-energy/halcyon/internal/modules/export"
	"github.com/halcyon-energy/halcyon/internal/modules/portfolio"
	"github.com/halcyon-energy/halcyon/internal/modules/snapshots"
)

// Handler handles portfolio calculation HTTP requests.
type Handler struct {
	service   *portfolio.Service
	repo      *portfolio.Repository
	snapshots *snapshots.Repository
	defaults  domain.Constants
	log       zerolog.Logger
}

// NewHandler creates a new portfolio handler.
func NewHandler(
	service *portfolio.Service,
	repo *portfolio.Repository,
	snapshotRepo *snapshots.Repository,
	defaults domain.Constants,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service:   service,
		repo:      repo,
		snapshots: snapshotRepo,
		defaults:  defaults,
		log:       log.With().Str("handler", "portfolio").Logger(),
	}
}

// CalculateRequest is the body of POST /api/calculate.
type CalculateRequest struct {
	Portfolio *domain.Portfolio    `json:"portfolio"`
	Config    portfolio.CalcConfig `json:"config"`
}

// normalize fills unset request fields from server defaults.
func (h *Handler) normalize(req *CalculateRequest) {
	if req.Config.Interval == "" {
		req.Config.Interval = domain.IntervalAnnual
	}
	if req.Config.StartYear == 0 {
		req.Config.StartYear = domain.DefaultStartYear
	}
	if req.Config.Years == 0 {
		req.Config.Years = domain.DefaultAssetLife
	}
	if req.Config.Constants == (domain.Constants{}) {
		req.Config.Constants = h.defaults
	}
}

// HandleCalculate handles POST /api/calculate. Results are cached by input
// hash; a repeated request over unchanged inputs is served from the cache.
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Portfolio == nil || len(req.Portfolio.Assets) == 0 {
		http.Error(w, "portfolio with at least one asset is required", http.StatusBadRequest)
		return
	}
	h.normalize(&req)

	key, err := snapshots.Key(req.Portfolio, req.Config)
	if err == nil {
		if cached, cacheErr := h.snapshots.Get(key); cacheErr == nil && cached != nil {
			h.log.Debug().Str("key", key).Msg("serving cached calculation")
			h.writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	response, err := h.service.Calculate(req.Portfolio, req.Config)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if key != "" {
		if err := h.snapshots.Put(key, response); err != nil {
			h.log.Warn().Err(err).Msg("failed to cache calculation")
		}
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleValidate handles POST /api/validate.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var p domain.Portfolio
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, portfolio.Validate(&p))
}

// HandleExport handles POST /api/export?format=csv|json&asset=<name>.
// The calculation runs on the submitted inputs and streams back in the
// requested projection.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Portfolio == nil || len(req.Portfolio.Assets) == 0 {
		http.Error(w, "portfolio with at least one asset is required", http.StatusBadRequest)
		return
	}
	h.normalize(&req)

	response, err := h.service.Calculate(req.Portfolio, req.Config)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="calculation.json"`)
		if err := export.WriteJSON(w, response); err != nil {
			h.log.Error().Err(err).Msg("failed to write JSON export")
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="calculation.csv"`)
		var writeErr error
		if asset := r.URL.Query().Get("asset"); asset != "" {
			writeErr = export.WriteAssetCSV(w, response.TimeSeries, asset)
		} else {
			writeErr = export.WritePortfolioCSV(w, response.TimeSeries)
		}
		if writeErr != nil {
			h.log.Error().Err(writeErr).Msg("failed to write CSV export")
		}
	default:
		http.Error(w, fmt.Sprintf("unsupported export format %q", format), http.StatusBadRequest)
	}
}

// HandleListPortfolios handles GET /api/portfolios.
func (h *Handler) HandleListPortfolios(w http.ResponseWriter, r *http.Request) {
	names, err := h.repo.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"portfolios": names})
}

// HandleGetPortfolio handles GET /api/portfolios/{name}.
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := h.repo.Get(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, fmt.Sprintf("portfolio %q not found", name), http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// HandleSavePortfolio handles PUT /api/portfolios/{name}.
func (h *Handler) HandleSavePortfolio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var p domain.Portfolio
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.repo.Save(name, &p); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"saved": name})
}

// HandleDeletePortfolio handles DELETE /api/portfolios/{name}.
func (h *Handler) HandleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.repo.Delete(name); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": name})
}

// writeJSON writes a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
