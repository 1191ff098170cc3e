package updateorder

import (
	"net/http"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/transport/http/auth"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/converters"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/httpio"
	"github.com/go-chi/chi/v5"
)

// UpdateOrder handles PATCH /api/orders/{id}.
func UpdateOrder(w http.ResponseWriter, r *http.Request) {
	sess, err := auth.FromContext(r.Context())
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	var req converters.UpdateOrderRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.WriteError(w, err)

		return
	}
	if err := converters.Validate(req); err != nil {
		httpio.WriteError(w, err)

		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	updated, err := sess.Store.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	httpio.WriteJSON(w, http.StatusOK, converters.OrderToResponse(updated, time.Now()))
}
