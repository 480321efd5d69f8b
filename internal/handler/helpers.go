package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/tastebite/storefront/internal/auth"
	"github.com/tastebite/storefront/internal/menu"
	"github.com/tastebite/storefront/internal/order"
	"github.com/tastebite/storefront/internal/profile"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, menu.ErrNotFound),
		errors.Is(err, profile.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, menu.ErrNegativePrice):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage keeps store internals out of responses while staying
// specific enough for the caller to react: a full checkout failure is
// retryable, a dangling order is not.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return "authentication required"
	case errors.Is(err, auth.ErrUnauthorized):
		return "not authorized"
	case errors.Is(err, order.ErrEmptyCart):
		return "cart is empty"
	case errors.Is(err, order.ErrOrderPersist):
		return "failed to place order, please retry"
	case errors.Is(err, order.ErrOrderItemsPersist):
		return "order was created but its items failed to persist, contact support"
	case errors.Is(err, order.ErrInvalidTransition):
		return err.Error()
	case errors.Is(err, order.ErrNotFound):
		return "order not found"
	case errors.Is(err, menu.ErrNotFound):
		return "menu item not found"
	case errors.Is(err, profile.ErrNotFound):
		return "profile not found"
	case errors.Is(err, menu.ErrNegativePrice):
		return "price cannot be negative"
	default:
		return "internal server error"
	}
}

func respondWithMappedError(w http.ResponseWriter, err error) {
	respondWithError(w, mapErrorToStatusCode(err), clientMessage(err))
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid request payload: %v", err))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "validation failed",
				Details: formatValidationErrors(validationErrors),
			})
		} else {
			log.Error().Err(err).Msg("unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "internal validation error")
		}
		return false
	}

	return true
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fe.Field()] = fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
	return details
}
