package createorder

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/transport/http/auth"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/converters"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/httpio"
)

// CreateOrder handles POST /api/orders.
func CreateOrder(w http.ResponseWriter, r *http.Request) {
	sess, err := auth.FromContext(r.Context())
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	var req converters.CreateOrderRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.WriteError(w, err)
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := converters.Validate(req); err != nil {
		httpio.WriteError(w, err)

		return
	}

	created, err := sess.Store.Create(r.Context(), req.ToDraft(), req.External)
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	httpio.WriteJSON(w, http.StatusCreated, converters.OrderToResponse(created, time.Now()))
}
