package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all price curve routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/prices", func(r chi.Router) {
		r.Post("/", h.HandleUpsertPrices)
		r.Get("/storage/spread", h.HandleStorageSpread)
		r.Get("/{profile}", h.HandleGetCurve)
	})
}
