package notifications

import (
	"net/http"

	"github.com/corray333/backend-labs/meatshop/internal/transport/http/auth"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/httpio"
)

// Drain handles GET /api/notifications and empties the session inbox.
func Drain(w http.ResponseWriter, r *http.Request) {
	sess, err := auth.FromContext(r.Context())
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	httpio.WriteJSON(w, http.StatusOK, sess.Inbox.Drain())
}
