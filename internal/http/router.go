// Package httpapi assembles the full route tree: public auth endpoints,
// token-protected resource endpoints, and the operational endpoints.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "shopfloor/internal/auth/handler"
	inventoryhandler "shopfloor/internal/inventory/handler"
	producthandler "shopfloor/internal/product/handler"
	qualityhandler "shopfloor/internal/quality/handler"
	workorderhandler "shopfloor/internal/workorder/handler"
	authmw "shopfloor/pkg/platform/middleware/auth"
	"shopfloor/pkg/platform/middleware/requestmeta"
)

// Deps carries everything the router mounts.
type Deps struct {
	Auth      *authhandler.Handler
	Product   *producthandler.Handler
	Inventory *inventoryhandler.Handler
	WorkOrder *workorderhandler.Handler
	Quality   *qualityhandler.Handler

	JWTValidator authmw.JWTValidator
	Revocation   authmw.TokenRevocationChecker
	Logger       *slog.Logger
}

// NewRouter wires all endpoints. Everything under /api requires a valid,
// non-revoked bearer token except signup and login.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestmeta.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		d.Auth.RegisterPublic(r)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAuth(d.JWTValidator, d.Revocation, d.Logger))

			d.Auth.RegisterProtected(r)
			d.Product.Register(r)
			d.Inventory.Register(r)
			d.WorkOrder.Register(r)
			d.Quality.Register(r)
		})
	})

	return r
}
