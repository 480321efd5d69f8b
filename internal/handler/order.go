package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tastebite/storefront/internal/auth"
	"github.com/tastebite/storefront/internal/order"
)

// OrderHandler exposes checkout, order history and the staff-facing
// fulfillment controls.
type OrderHandler struct {
	svc      order.Service
	validate *validator.Validate
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/checkout", h.Checkout)
	router.Get("/orders", h.ListMine)
	router.Get("/orders/{id}", h.GetByID)
	router.Get("/admin/orders", h.ListAll)
	router.Post("/admin/orders/{id}/status", h.UpdateStatus)
}

type checkoutRequest struct {
	FullName      string `json:"full_name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required"`
	Address       string `json:"address" validate:"required"`
	City          string `json:"city" validate:"required"`
	Zip           string `json:"zip" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card cash"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	delivery := order.DeliveryInfo{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		Zip:      req.Zip,
	}

	ord, err := h.svc.Checkout(r.Context(), auth.FromContext(r.Context()), delivery, req.PaymentMethod)
	if err != nil {
		log.Warn().Err(err).Msg("checkout failed")
		respondWithMappedError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, ord)
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListByUser(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		respondWithMappedError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	ord, err := h.svc.GetByID(r.Context(), auth.FromContext(r.Context()), id)
	if err != nil {
		respondWithMappedError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ord)
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListAll(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		respondWithMappedError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req updateStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	ord, err := h.svc.Advance(r.Context(), auth.FromContext(r.Context()), id, order.Status(req.Status))
	if err != nil {
		respondWithMappedError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ord)
}
