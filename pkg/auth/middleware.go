package auth

import (
	"context"
	"net/http"
	"strings"

	"burrow/pkg/utils"
)

type ctxKey int

const userKey ctxKey = iota

// UserFromContext returns the authenticated user id set by Middleware.
func UserFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey).(string)
	return id, ok && id != ""
}

// WithUser stamps a user id onto the context. Exposed for tests.
func WithUser(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userKey, id)
}

// Middleware authenticates requests with a Bearer access token. The
// caller identity always comes from the verified token, never from a
// request body or query parameter.
func Middleware(signer *Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				utils.JSONError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			userID, err := signer.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				utils.JSONError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
		})
	}
}
