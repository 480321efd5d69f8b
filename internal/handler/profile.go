package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/tastebite/storefront/internal/auth"
	"github.com/tastebite/storefront/internal/profile"
)

type ProfileHandler struct {
	profiles profile.Repository
	validate *validator.Validate
}

func NewProfileHandler(profiles profile.Repository) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		validate: validator.New(),
	}
}

func (h *ProfileHandler) RegisterRoutes(router chi.Router) {
	router.Get("/profile", h.Get)
	router.Put("/profile", h.Update)
}

type updateProfileRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Pin      string `json:"pin"`
}

// Get returns the caller's profile, creating the default non-admin row on
// first sight of the identity.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ident := auth.FromContext(r.Context())
	if ident == nil {
		respondWithMappedError(w, auth.ErrUnauthenticated)
		return
	}

	p, err := h.profiles.Ensure(r.Context(), ident.UserID, ident.Email, "")
	if err != nil {
		log.Error().Err(err).Stringer("user_id", ident.UserID).Msg("failed to ensure profile")
		respondWithMappedError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	ident := auth.FromContext(r.Context())
	if ident == nil {
		respondWithMappedError(w, auth.ErrUnauthenticated)
		return
	}

	var req updateProfileRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	upd := profile.ContactUpdate{
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		Pin:      req.Pin,
	}
	if err := h.profiles.Update(r.Context(), ident.UserID, upd); err != nil {
		respondWithMappedError(w, err)
		return
	}

	p, err := h.profiles.GetByID(r.Context(), ident.UserID)
	if err != nil {
		respondWithMappedError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}
