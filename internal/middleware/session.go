package middleware

import (
	"context"
	"net/http"

	"github.com/prodline/internal/model"
)

const SessionCookieName = "session"

type contextKey string

const contextKeySession contextKey = "sessionUser"

// SessionReader resolves a session token to its identity snapshot.
type SessionReader interface {
	Get(token string) (model.SessionUser, bool)
}

// Session resolves the session cookie and, when it maps to a live session,
// attaches the identity snapshot to the request context. It never rejects a
// request itself; the route guards decide what an absent session means.
func Session(sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				if user, ok := sessions.Get(cookie.Value); ok {
					ctx := context.WithValue(r.Context(), contextKeySession, user)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext returns the authenticated user's snapshot, if any.
func SessionFromContext(ctx context.Context) (model.SessionUser, bool) {
	user, ok := ctx.Value(contextKeySession).(model.SessionUser)
	return user, ok
}
