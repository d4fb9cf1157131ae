package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio calculation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/calculate", h.HandleCalculate)
	r.Post("/validate", h.HandleValidate)
	r.Post("/export", h.HandleExport)

	r.Route("/portfolios", func(r chi.Router) {
		r.Get("/", h.HandleListPortfolios)
		r.Get("/{name}", h.HandleGetPortfolio)
		r.Put("/{name}", h.HandleSavePortfolio)
		r.Delete("/{name}", h.HandleDeletePortfolio)
	})
}
