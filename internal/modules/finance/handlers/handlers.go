// Package handlers provides HTTP handlers for project-finance operations.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/halcyon-energy/halcyon/internal/domain"
	"github.com/halcyon-energy/halcyon/internal/modules/analysis"
	"github.com/halcyon-energy/halcyon/internal/modules/finance"
	"github.com/halcyon-energy/halcyon/internal/modules/portfolio"
)

// Handler handles project-finance HTTP requests.
type Handler struct {
	finance   *finance.Service
	analysis  *analysis.Service
	portfolio *portfolio.Service
	defaults  domain.Constants
	log       zerolog.Logger
}

// NewHandler creates a new finance handler.
func NewHandler(
	financeService *finance.Service,
	analysisService *analysis.Service,
	portfolioService *portfolio.Service,
	defaults domain.Constants,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		finance:   financeService,
		analysis:  analysisService,
		portfolio: portfolioService,
		defaults:  defaults,
		log:       log.With().Str("handler", "finance").Logger(),
	}
}

// FinanceRequest is the body of POST /api/finance. The revenue pipeline runs
// first, then debt is sized against the resulting series. Asset selects a
// single-asset analysis; empty means the portfolio aggregate.
type FinanceRequest struct {
	Portfolio *domain.Portfolio      `json:"portfolio"`
	Config    portfolio.CalcConfig   `json:"config"`
	Costs     domain.CostAssumptions `json:"costs"`
	Asset     string                 `json:"asset,omitempty"`
}

// HandleFinance handles POST /api/finance.
func (h *Handler) HandleFinance(w http.ResponseWriter, r *http.Request) {
	req, series, ok := h.runPipeline(w, r)
	if !ok {
		return
	}

	var result domain.FinanceResult
	if req.Asset != "" {
		asset := findAsset(req.Portfolio, req.Asset)
		if asset == nil {
			http.Error(w, fmt.Sprintf("asset %q not found in portfolio", req.Asset), http.StatusNotFound)
			return
		}
		result = h.finance.ForAsset(asset, series, req.Costs)
	} else {
		result = h.finance.ForPortfolio(series, req.Costs, earliestStartYear(req.Portfolio))
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleTornado handles POST /api/analysis/tornado.
func (h *Handler) HandleTornado(w http.ResponseWriter, r *http.Request) {
	result, ok := h.solveBaseIRR(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"baseIRR": *result.EquityIRR,
		"entries": analysis.Tornado(*result.EquityIRR),
	})
}

// MonteCarloRequest extends the finance request with simulation parameters.
type MonteCarloRequest struct {
	FinanceRequest
	Draws int    `json:"draws,omitempty"`
	Seed  uint64 `json:"seed,omitempty"`
}

// HandleMonteCarlo handles POST /api/analysis/montecarlo.
func (h *Handler) HandleMonteCarlo(w http.ResponseWriter, r *http.Request) {
	var req MonteCarloRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, ok := h.financeFor(w, &req.FinanceRequest)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"baseIRR":    *result.EquityIRR,
		"simulation": h.analysis.MonteCarlo(*result.EquityIRR, req.Draws, req.Seed),
	})
}

// BreakEvenRequest extends the finance request with the IRR target.
type BreakEvenRequest struct {
	FinanceRequest
	TargetIRR float64 `json:"targetIRR"`
}

// HandleBreakEven handles POST /api/analysis/breakeven.
func (h *Handler) HandleBreakEven(w http.ResponseWriter, r *http.Request) {
	var req BreakEvenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, ok := h.financeFor(w, &req.FinanceRequest)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"baseIRR":    *result.EquityIRR,
		"targetIRR":  req.TargetIRR,
		"breakEvens": analysis.BreakEvens(*result.EquityIRR, req.TargetIRR),
	})
}

// solveBaseIRR decodes a finance request from the body and resolves its
// equity IRR, writing the HTTP error itself when it cannot.
func (h *Handler) solveBaseIRR(w http.ResponseWriter, r *http.Request) (domain.FinanceResult, bool) {
	var req FinanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return domain.FinanceResult{}, false
	}
	return h.financeFor(w, &req)
}

func (h *Handler) financeFor(w http.ResponseWriter, req *FinanceRequest) (domain.FinanceResult, bool) {
	series, ok := h.runPipelineFor(w, req)
	if !ok {
		return domain.FinanceResult{}, false
	}

	var result domain.FinanceResult
	if req.Asset != "" {
		asset := findAsset(req.Portfolio, req.Asset)
		if asset == nil {
			http.Error(w, fmt.Sprintf("asset %q not found in portfolio", req.Asset), http.StatusNotFound)
			return domain.FinanceResult{}, false
		}
		result = h.finance.ForAsset(asset, series, req.Costs)
	} else {
		result = h.finance.ForPortfolio(series, req.Costs, earliestStartYear(req.Portfolio))
	}

	if result.EquityIRR == nil {
		http.Error(w, "equity IRR is undetermined for these inputs", http.StatusUnprocessableEntity)
		return domain.FinanceResult{}, false
	}
	return result, true
}

func (h *Handler) runPipeline(w http.ResponseWriter, r *http.Request) (*FinanceRequest, domain.TimeSeries, bool) {
	var req FinanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return nil, nil, false
	}
	series, ok := h.runPipelineFor(w, &req)
	return &req, series, ok
}

func (h *Handler) runPipelineFor(w http.ResponseWriter, req *FinanceRequest) (domain.TimeSeries, bool) {
	if req.Portfolio == nil || len(req.Portfolio.Assets) == 0 {
		http.Error(w, "portfolio with at least one asset is required", http.StatusBadRequest)
		return nil, false
	}

	if req.Config.Interval == "" {
		req.Config.Interval = domain.IntervalAnnual
	}
	if req.Config.StartYear == 0 {
		req.Config.StartYear = earliestStartYear(req.Portfolio)
	}
	if req.Config.Years == 0 {
		req.Config.Years = domain.DefaultAssetLife
	}
	if req.Config.Constants == (domain.Constants{}) {
		req.Config.Constants = h.defaults
	}

	series, err := h.portfolio.TimeSeries(req.Portfolio, req.Config)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return nil, false
	}
	return series, true
}

func findAsset(p *domain.Portfolio, name string) *domain.Asset {
	for _, asset := range p.Assets {
		if asset.Name == name {
			return asset
		}
	}
	return nil
}

func earliestStartYear(p *domain.Portfolio) int {
	earliest := 0
	for _, asset := range p.Assets {
		if year := asset.StartYear(); earliest == 0 || year < earliest {
			earliest = year
		}
	}
	if earliest == 0 {
		earliest = domain.DefaultStartYear
	}
	return earliest
}

// writeJSON writes a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
