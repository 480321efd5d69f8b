package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/tastebite/storefront/internal/auth"
	"github.com/tastebite/storefront/internal/menu"
)

type MenuHandler struct {
	svc      *menu.Service
	validate *validator.Validate
}

func NewMenuHandler(svc *menu.Service) *MenuHandler {
	return &MenuHandler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *MenuHandler) RegisterRoutes(router chi.Router) {
	router.Get("/menu", h.List)
	router.Get("/admin/menu", h.ListAll)
	router.Post("/admin/menu", h.Create)
	router.Put("/admin/menu/{id}", h.Update)
	router.Delete("/admin/menu/{id}", h.Delete)
	router.Post("/admin/menu/{id}/availability", h.SetAvailability)
}

type menuItemRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required"`
	ImageURL    string          `json:"image_url"`
	Available   bool            `json:"available"`
}

type setAvailabilityRequest struct {
	Available bool `json:"available"`
}

func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListAvailable(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		respondWithMappedError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

func (h *MenuHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListAll(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		respondWithMappedError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	item := menu.Item{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Available:   req.Available,
	}
	if err := h.svc.Create(r.Context(), auth.FromContext(r.Context()), &item); err != nil {
		respondWithMappedError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid menu item id")
		return
	}

	var req menuItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	item := menu.Item{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Available:   req.Available,
	}
	if err := h.svc.Update(r.Context(), auth.FromContext(r.Context()), &item); err != nil {
		respondWithMappedError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid menu item id")
		return
	}

	if err := h.svc.Delete(r.Context(), auth.FromContext(r.Context()), id); err != nil {
		respondWithMappedError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MenuHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid menu item id")
		return
	}

	var req setAvailabilityRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.svc.SetAvailability(r.Context(), auth.FromContext(r.Context()), id, req.Available); err != nil {
		respondWithMappedError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"available": req.Available})
}
