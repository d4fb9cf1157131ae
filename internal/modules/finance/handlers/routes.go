package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all finance and sensitivity routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/finance", h.HandleFinance)

	r.Route("/analysis", func(r chi.Router) {
		r.Post("/tornado", h.HandleTornado)
		r.Post("/montecarlo", h.HandleMonteCarlo)
		r.Post("/breakeven", h.HandleBreakEven)
	})
}
