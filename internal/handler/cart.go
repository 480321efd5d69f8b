package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/tastebite/storefront/internal/auth"
	"github.com/tastebite/storefront/internal/cart"
	"github.com/tastebite/storefront/internal/pricing"
)

type CartHandler struct {
	carts    cart.Store
	calc     *pricing.Calculator
	validate *validator.Validate
}

func NewCartHandler(carts cart.Store, calc *pricing.Calculator) *CartHandler {
	return &CartHandler{
		carts:    carts,
		calc:     calc,
		validate: validator.New(),
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.Get)
	router.Post("/cart/items", h.AddItem)
	router.Patch("/cart/items/{id}", h.SetQuantity)
	router.Delete("/cart/items/{id}", h.RemoveItem)
	router.Delete("/cart", h.Clear)
}

type addItemRequest struct {
	ID        string          `json:"id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image_url"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Items       []cart.Item `json:"items"`
	Subtotal    string      `json:"subtotal"`
	Tax         string      `json:"tax"`
	DeliveryFee string      `json:"delivery_fee"`
	GrandTotal  string      `json:"grand_total"`
}

// render rounds to cents here, at the presentation boundary, never earlier.
func (h *CartHandler) render(state cart.State) cartResponse {
	quote := h.calc.Quote(state.Total)
	return cartResponse{
		Items:       state.Items,
		Subtotal:    quote.Subtotal.StringFixed(2),
		Tax:         quote.Tax.StringFixed(2),
		DeliveryFee: quote.DeliveryFee.StringFixed(2),
		GrandTotal:  quote.GrandTotal.StringFixed(2),
	}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	ident := auth.FromContext(r.Context())
	if ident == nil {
		respondWithMappedError(w, auth.ErrUnauthenticated)
		return
	}

	state, err := h.load(w, r, ident)
	if err != nil {
		return
	}
	respondWithJSON(w, http.StatusOK, h.render(state))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ident := auth.FromContext(r.Context())
	if ident == nil {
		respondWithMappedError(w, auth.ErrUnauthenticated)
		return
	}

	var req addItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	state, err := h.load(w, r, ident)
	if err != nil {
		return
	}

	state = state.Add(cart.Item{
		ID:        req.ID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Quantity:  req.Quantity,
		ImageURL:  req.ImageURL,
	})
	h.store(w, r, ident, state)
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	ident := auth.FromContext(r.Context())
	if ident == nil {
		respondWithMappedError(w, auth.ErrUnauthenticated)
		return
	}

	var req setQuantityRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	state, err := h.load(w, r, ident)
	if err != nil {
		return
	}

	state = state.SetQuantity(chi.URLParam(r, "id"), req.Quantity)
	h.store(w, r, ident, state)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ident := auth.FromContext(r.Context())
	if ident == nil {
		respondWithMappedError(w, auth.ErrUnauthenticated)
		return
	}

	state, err := h.load(w, r, ident)
	if err != nil {
		return
	}

	state = state.Remove(chi.URLParam(r, "id"))
	h.store(w, r, ident, state)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ident := auth.FromContext(r.Context())
	if ident == nil {
		respondWithMappedError(w, auth.ErrUnauthenticated)
		return
	}

	if err := h.carts.Delete(r.Context(), ident.UserID.String()); err != nil {
		log.Error().Err(err).Msg("failed to clear cart")
		respondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	respondWithJSON(w, http.StatusOK, h.render(cart.NewState()))
}

func (h *CartHandler) load(w http.ResponseWriter, r *http.Request, ident *auth.Identity) (cart.State, error) {
	state, err := h.carts.Get(r.Context(), ident.UserID.String())
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return cart.NewState(), nil
		}
		log.Error().Err(err).Msg("failed to load cart")
		respondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return cart.State{}, err
	}
	return state, nil
}

func (h *CartHandler) store(w http.ResponseWriter, r *http.Request, ident *auth.Identity, state cart.State) {
	if err := h.carts.Put(r.Context(), ident.UserID.String(), state); err != nil {
		log.Error().Err(err).Msg("failed to save cart")
		respondWithError(w, http.StatusInternalServerError, "failed to save cart")
		return
	}
	respondWithJSON(w, http.StatusOK, h.render(state))
}
