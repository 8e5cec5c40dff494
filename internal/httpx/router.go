package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/suhanarda/greengrocer/internal/httpx/middlewares"
)

// NewRouter wires the middleware chain and all routes. jwtSecret signs the
// bearer tokens the auth middleware verifies.
func NewRouter(handler *Handler, jwtSecret string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CollectMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// The catalog is public: browsing needs no account.
	r.Get("/products", handler.ListProducts)

	r.Group(func(r chi.Router) {
		r.Use(middlewares.Authenticate(jwtSecret))

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireRole(middlewares.RoleCustomer))
			r.Get("/cart", handler.GetCart)
			r.Post("/cart/items", handler.AddCartItem)
			r.Put("/cart/items/{productID}", handler.SetCartAmount)
			r.Delete("/cart/items/{productID}", handler.RemoveCartItem)
			r.Delete("/cart", handler.ClearCart)
			r.Post("/checkout", handler.Checkout)
		})

		r.Get("/orders", handler.ListOrders)
		r.Get("/orders/{id}", handler.GetOrder)
		r.Post("/orders/{id}/cancel", handler.CancelOrder)
		r.Get("/invoices/{ref}", handler.GetInvoice)

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireRole(middlewares.RoleCarrier))
			r.Get("/orders/open", handler.ListOpenOrders)
			r.Post("/orders/{id}/claim", handler.ClaimOrder)
			r.Post("/orders/{id}/deliver", handler.DeliverOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireRole(middlewares.RoleOwner))
			r.Post("/products", handler.CreateProduct)
			r.Post("/coupons", handler.CreateCoupon)
			r.Post("/customers", handler.CreateCustomer)
			r.Put("/settings/min-order-amount", handler.UpdateMinOrderAmount)
		})
	})

	// otelhttp wraps the whole router so every request gets a server span;
	// chi's RouteContext still resolves patterns inside it.
	return otelhttp.NewHandler(r, "greengrocer-http")
}
