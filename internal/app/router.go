package app

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/toybazaar/toybazaar/internal/auth"
	"github.com/toybazaar/toybazaar/internal/cart"
	"github.com/toybazaar/toybazaar/internal/catalog"
	"github.com/toybazaar/toybazaar/internal/customers"
	"github.com/toybazaar/toybazaar/internal/observability"
	"github.com/toybazaar/toybazaar/internal/orders"
	"github.com/toybazaar/toybazaar/internal/payments"
	"github.com/toybazaar/toybazaar/internal/platform/httpx"
	"github.com/toybazaar/toybazaar/internal/promo"
	"github.com/toybazaar/toybazaar/internal/shipping"
	"github.com/toybazaar/toybazaar/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthService      *auth.Service
	AuthHandler      *auth.Handler
	CatalogHandler   *catalog.Handler
	CartHandler      *cart.Handler
	ShippingHandler  *shipping.Handler
	PromoHandler     *promo.Handler
	CustomersHandler *customers.Handler
	OrdersHandler    *orders.Handler
	PaymentsHandler  *payments.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with storefront defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Public storefront surface.
	params.CatalogHandler.MountRoutes(r)
	params.PromoHandler.MountRoutes(r)
	r.Route("/shipping-rules", params.ShippingHandler.MountRoutes)
	r.Route("/cart", params.CartHandler.MountCartRoutes)
	r.Route("/wishlist", params.CartHandler.MountWishlistRoutes)
	r.Route("/auth", params.AuthHandler.MountRoutes)

	// The gateway authenticates with a payload signature, not a session.
	if params.PaymentsHandler != nil {
		r.Route("/payments", func(r chi.Router) {
			params.PaymentsHandler.MountWebhook(r)
			params.PaymentsHandler.MountHealth(r)
		})
	}

	// Buyer surface behind bearer sessions.
	r.Group(func(r chi.Router) {
		r.Use(params.AuthService.RequireAuth)
		r.Route("/me", params.CustomersHandler.MountRoutes)
		r.Route("/orders", func(r chi.Router) {
			params.OrdersHandler.MountRoutes(r)
			if params.PaymentsHandler != nil {
				params.PaymentsHandler.MountOrderRoutes(r)
			}
		})
	})

	// Back office, gated by a static operator token.
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminOnly(params.Config, params.Logger))
		r.Route("/shipping-rules", params.ShippingHandler.MountAdminRoutes)
		r.Route("/deals", params.PromoHandler.MountAdminRoutes)
		r.Route("/orders", params.OrdersHandler.MountAdminRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

// adminOnly requires the operator token in X-Admin-Token.
func adminOnly(cfg *Config, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Admin-Token")
			if cfg == nil || cfg.AdminToken == "" ||
				subtle.ConstantTimeCompare([]byte(token), []byte(cfg.AdminToken)) != 1 {
				logger.Warn("admin token rejected", slog.String("path", r.URL.Path))
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
