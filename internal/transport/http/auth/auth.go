// Package auth resolves the bearer token of a request to its staff session.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/corray333/backend-labs/meatshop/internal/service/session"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/httpio"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey struct{}

// resolver finds the session of a token.
type resolver interface {
	Get(token string) (*session.Session, error)
}

// BearerToken returns the token of the Authorization header, or "".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}

	return strings.TrimSpace(token)
}

// NewAuthMiddleware rejects requests without a live session with 401.
func NewAuthMiddleware(sessions resolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				httpio.WriteError(w, order.ErrNotAuthenticated)

				return
			}

			sess, err := sessions.Get(token)
			if err != nil {
				httpio.WriteError(w, err)

				return
			}

			if actor, ok := sess.ActorID(); ok {
				trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("staff.id", actor))
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// WithSession stores sess in ctx.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromContext returns the session of the request.
func FromContext(ctx context.Context) (*session.Session, error) {
	sess, ok := ctx.Value(ctxKey{}).(*session.Session)
	if !ok || sess == nil {
		return nil, order.ErrNotAuthenticated
	}

	return sess, nil
}
