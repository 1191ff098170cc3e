package sessions

import (
	"context"
	"net/http"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/corray333/backend-labs/meatshop/internal/service/session"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/auth"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/converters"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/httpio"
)

// service is the session manager.
type service interface {
	Login(ctx context.Context, staffID, pin string) (*session.Session, error)
	Logout(token string) error
}

type loginRequest struct {
	StaffID string `json:"staffId" validate:"required"`
	PIN     string `json:"pin"     validate:"required"`
}

type loginResponse struct {
	Token   string `json:"token"`
	StaffID string `json:"staffId"`
	Orders  int    `json:"orders"`
}

type syncResponse struct {
	Degraded bool   `json:"degraded"`
	Error    string `json:"error,omitempty"`
}

// Login handles POST /api/sessions.
func Login(w http.ResponseWriter, r *http.Request, service service) {
	var req loginRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.WriteError(w, err)

		return
	}
	if err := converters.Validate(req); err != nil {
		httpio.WriteError(w, err)

		return
	}

	sess, err := service.Login(r.Context(), req.StaffID, req.PIN)
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	staffID, _ := sess.ActorID()
	httpio.WriteJSON(w, http.StatusCreated, loginResponse{
		Token:   sess.Token(),
		StaffID: staffID,
		Orders:  sess.Store.Len(),
	})
}

// Logout handles DELETE /api/sessions.
func Logout(w http.ResponseWriter, r *http.Request, service service) {
	token := auth.BearerToken(r)
	if token == "" {
		httpio.WriteError(w, order.ErrNotAuthenticated)

		return
	}

	if err := service.Logout(token); err != nil {
		httpio.WriteError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SyncStatus handles GET /api/sync.
func SyncStatus(w http.ResponseWriter, r *http.Request) {
	sess, err := auth.FromContext(r.Context())
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	resp := syncResponse{}
	if err := sess.Store.SyncStatus(); err != nil {
		resp.Degraded = true
		resp.Error = err.Error()
	}

	httpio.WriteJSON(w, http.StatusOK, resp)
}
