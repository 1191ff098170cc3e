package listorders

import (
	"errors"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/corray333/backend-labs/meatshop/internal/service/services/orderstore"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/auth"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/converters"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/httpio"
	"github.com/gorilla/schema"
)

// SyncDegradedHeader carries the change feed failure while the list may be stale.
const SyncDegradedHeader = "X-Sync-Degraded"

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

type queryOrdersRequest struct {
	View   string `schema:"view"`
	Status string `schema:"status"`
	Query  string `schema:"q"`
}

func (q *queryOrdersRequest) toFilter() (orderstore.Filter, error) {
	f := orderstore.Filter{View: orderstore.ViewAll, Query: q.Query}

	switch orderstore.View(q.View) {
	case "", orderstore.ViewAll:
	case orderstore.ViewActive, orderstore.ViewHistory:
		f.View = orderstore.View(q.View)
	default:
		return orderstore.Filter{}, order.NewValidationError("view", "must be active, history or all")
	}

	if q.Status != "" {
		s, err := order.ParseStatus(q.Status)
		if err != nil {
			return orderstore.Filter{}, order.NewValidationError("status", err.Error())
		}
		f.Status = s
	}

	return f, nil
}

// ListOrders handles GET /api/orders.
func ListOrders(w http.ResponseWriter, r *http.Request) {
	sess, err := auth.FromContext(r.Context())
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		httpio.WriteError(w, errors.Join(httpio.ErrBadRequest, err))

		return
	}

	filter, err := query.toFilter()
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	if syncErr := sess.Store.SyncStatus(); syncErr != nil {
		w.Header().Set(SyncDegradedHeader, syncErr.Error())
	}

	orders := sess.Store.List(filter)
	httpio.WriteJSON(w, http.StatusOK, converters.OrdersToResponse(orders, time.Now()))
}
