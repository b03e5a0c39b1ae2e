package mockapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/StorefrontGo/pkg/middleware"
)

// NewRouter creates a chi router serving the storefront REST contract under
// /api/v1, plus /metrics and a liveness endpoint.
func NewRouter(h *Handler, tokens *TokenManager, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("mockapi"))

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/search", h.SearchProducts)

		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(tokens.Validate))

			r.Get("/cart", h.GetCart)
			r.Post("/cart", h.UpsertCart)
			r.Post("/cart/checkout", h.Checkout)

			r.Get("/user/addresses", h.ListAddresses)
			r.Post("/user/addresses", h.AddAddress)
			r.Delete("/user/addresses/{id}", h.DeleteAddress)
		})
	})

	return r
}
