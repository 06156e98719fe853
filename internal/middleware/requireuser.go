package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// userKey is the context key for the authenticated user's ID.
const userKey contextKey = "user_id"

// UserHeader carries the caller's identity, set by the authenticating
// reverse proxy in front of this service.
const UserHeader = "X-User-ID"

// RequireUser extracts the caller's user ID from the X-User-ID header and
// stores it in the request context. Requests without a valid UUID in the
// header are rejected with 401 — every document route is owner-scoped, so
// there is nothing useful to serve an anonymous caller.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(UserHeader))
		if err != nil || id == uuid.Nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromCtx extracts the authenticated user's ID from the request
// context. Returns uuid.Nil if RequireUser did not run.
func UserFromCtx(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userKey).(uuid.UUID)
	return id
}
