package tickethandler

import (
	"net/http"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/corray333/backend-labs/meatshop/internal/service/ticket"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/auth"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/httpio"
	"github.com/go-chi/chi/v5"
)

type printer interface {
	Render(o order.Order, f ticket.Format) (string, error)
}

// Ticket handles GET /api/orders/{id}/ticket?format=simple|full.
func Ticket(w http.ResponseWriter, r *http.Request, p printer) {
	sess, err := auth.FromContext(r.Context())
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	format, err := ticket.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	o, err := sess.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	text, err := p.Render(o, format)
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
