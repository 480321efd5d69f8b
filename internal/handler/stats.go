package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tastebite/storefront/internal/auth"
	"github.com/tastebite/storefront/internal/stats"
)

type StatsHandler struct {
	svc *stats.Service
}

func NewStatsHandler(svc *stats.Service) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(router chi.Router) {
	router.Get("/admin/stats", h.Summary)
}

func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		respondWithMappedError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}
