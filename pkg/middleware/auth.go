package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/utafrali/StorefrontGo/pkg/httputil"
)

type contextKeyType string

const usernameKey contextKeyType = "username"

// TokenValidator validates a bearer token and returns the username it
// identifies. The server injects its own validation logic (e.g. JWT parsing).
type TokenValidator func(token string) (string, error)

// It matches the wire contract the storefront client expects on protected routes.
const missingTokenMessage = "Protected route, Oauth2 Bearer token not found"

// BearerAuth validates the Authorization header and injects the authenticated
// username into the request context. Missing or invalid tokens get a 401
// failure envelope.
func BearerAuth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteFailure(w, http.StatusUnauthorized, missingTokenMessage)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				httputil.WriteFailure(w, http.StatusUnauthorized, missingTokenMessage)
				return
			}

			username, err := validate(parts[1])
			if err != nil {
				httputil.WriteFailure(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext returns the authenticated username set by BearerAuth.
func UsernameFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(usernameKey).(string); ok {
		return v
	}
	return ""
}
