package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/utafrali/StorefrontGo/pkg/httputil"
)

// Recovery recovers from panics and returns a 500 failure envelope instead of
// crashing the server.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					l.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)

					httputil.WriteFailure(w, http.StatusInternalServerError,
						"Something went wrong. Check the backend console for more details")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
