// Package elapsedhandler serves the live preparation timer of an order.
package elapsedhandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/elapsed"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/auth"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/httpio"
	"github.com/go-chi/chi/v5"
)

type elapsedResponse struct {
	OrderID   string `json:"orderId"`
	ElapsedMs int64  `json:"elapsedMs"`
	Running   bool   `json:"running"`
}

// Elapsed handles GET /api/orders/{id}/elapsed.
func Elapsed(w http.ResponseWriter, r *http.Request) {
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

	httpio.WriteJSON(w, http.StatusOK, elapsedResponse{
		OrderID:   o.ID,
		ElapsedMs: elapsed.Of(o, time.Now()).Milliseconds(),
		Running:   elapsed.IsActive(o),
	})
}

// Stream handles GET /api/orders/{id}/elapsed/stream as server-sent events.
// The stream ends when the order leaves preparation, the client goes away or
// the session ends.
func Stream(w http.ResponseWriter, r *http.Request, interval time.Duration) {
	sess, err := auth.FromContext(r.Context())
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	id := chi.URLParam(r, "id")
	if _, err := sess.Store.Get(id); err != nil {
		httpio.WriteError(w, err)

		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httpio.WriteError(w, errors.New("streaming unsupported"))

		return
	}

	tracker := elapsed.NewTracker(sess.ElapsedSource(id), elapsed.WithInterval(interval))
	defer tracker.Stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for d := range tracker.Run(r.Context()) {
		if _, err := fmt.Fprintf(w, "event: elapsed\ndata: {\"orderId\":%q,\"elapsedMs\":%d}\n\n", id, d.Milliseconds()); err != nil {
			slog.Debug("Elapsed stream client gone", "order_id", id, "error", err)

			return
		}
		flusher.Flush()
	}

	_, _ = fmt.Fprint(w, "event: done\ndata: {}\n\n")
	flusher.Flush()
}
