// Package httpio writes JSON bodies and maps service errors to HTTP statuses.
package httpio

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/deliveryzone"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/product"
	"github.com/corray333/backend-labs/meatshop/internal/service/session"
	"github.com/corray333/backend-labs/meatshop/internal/service/ticket"
)

// ErrBadRequest marks a request that could not be decoded.
var ErrBadRequest = errors.New("bad request")

const (
	KindBadRequest        = "bad_request"
	KindValidation        = "validation"
	KindNotAuthenticated  = "not_authenticated"
	KindNotFound          = "not_found"
	KindInvalidTransition = "invalid_transition"
	KindPersistence       = "persistence"
	KindInternal          = "internal"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Classify returns the status and kind for err.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, ticket.ErrInvalidFormat):
		return http.StatusBadRequest, KindBadRequest
	case order.IsValidation(err):
		return http.StatusBadRequest, KindValidation
	case errors.Is(err, order.ErrNotAuthenticated), errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized, KindNotAuthenticated
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, deliveryzone.ErrZoneNotFound),
		errors.Is(err, product.ErrProductNotFound):
		return http.StatusNotFound, KindNotFound
	case order.IsInvalidTransition(err):
		return http.StatusConflict, KindInvalidTransition
	case order.IsPersistence(err):
		return http.StatusBadGateway, KindPersistence
	default:
		return http.StatusInternalServerError, KindInternal
	}
}

// WriteJSON encodes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

// WriteError writes err as an ErrorResponse.
func WriteError(w http.ResponseWriter, err error) {
	status, kind := Classify(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "error", err, "kind", kind)
	}

	WriteJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kind})
}

// Decode reads a JSON body into v. Failures wrap ErrBadRequest.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(ErrBadRequest, err)
	}

	return nil
}
