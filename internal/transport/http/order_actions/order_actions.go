// Package orderactions serves single-order reads and lifecycle transitions.
package orderactions

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/auth"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/converters"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/httpio"
	"github.com/go-chi/chi/v5"
)

type transitionFunc func(ctx context.Context, id string) (order.Order, error)

func run(w http.ResponseWriter, r *http.Request, pick func(s storeActions) transitionFunc) {
	sess, err := auth.FromContext(r.Context())
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	o, err := pick(sess.Store)(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	httpio.WriteJSON(w, http.StatusOK, converters.OrderToResponse(o, time.Now()))
}

// storeActions is the part of the order store the transitions use.
type storeActions interface {
	Accept(ctx context.Context, id string) (order.Order, error)
	Cancel(ctx context.Context, id string) (order.Order, error)
	Deliver(ctx context.Context, id string) (order.Order, error)
	MarkPaid(ctx context.Context, id string) (order.Order, error)
}

// GetOrder handles GET /api/orders/{id}.
func GetOrder(w http.ResponseWriter, r *http.Request) {
	sess, err := auth.FromContext(r.Context())
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	o, err := sess.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	httpio.WriteJSON(w, http.StatusOK, converters.OrderToResponse(o, time.Now()))
}

// Accept handles POST /api/orders/{id}/accept.
func Accept(w http.ResponseWriter, r *http.Request) {
	run(w, r, func(s storeActions) transitionFunc { return s.Accept })
}

// Cancel handles POST /api/orders/{id}/cancel.
func Cancel(w http.ResponseWriter, r *http.Request) {
	run(w, r, func(s storeActions) transitionFunc { return s.Cancel })
}

// Deliver handles POST /api/orders/{id}/deliver.
func Deliver(w http.ResponseWriter, r *http.Request) {
	run(w, r, func(s storeActions) transitionFunc { return s.Deliver })
}

// Pay handles POST /api/orders/{id}/pay.
func Pay(w http.ResponseWriter, r *http.Request) {
	run(w, r, func(s storeActions) transitionFunc { return s.MarkPaid })
}

// Send handles POST /api/orders/{id}/send with the payment reconciliation body.
func Send(w http.ResponseWriter, r *http.Request) {
	sess, err := auth.FromContext(r.Context())
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	var req converters.SendRequest
	if err := httpio.Decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpio.WriteError(w, err)

		return
	}
	if err := converters.Validate(req); err != nil {
		httpio.WriteError(w, err)

		return
	}

	o, res, err := sess.Store.Send(r.Context(), chi.URLParam(r, "id"), req.ToReconciliation())
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	httpio.WriteJSON(w, http.StatusOK, converters.SendResultToResponse(o, res, time.Now()))
}

// Delete handles DELETE /api/orders/{id}. Only closed orders can be deleted.
func Delete(w http.ResponseWriter, r *http.Request) {
	sess, err := auth.FromContext(r.Context())
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	if err := sess.Store.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpio.WriteError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
