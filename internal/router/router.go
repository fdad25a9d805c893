package router

import (
	"net/http"

	"resto-ledger/internal/handler"
	"resto-ledger/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handlers groups the front API handlers.
type Handlers struct {
	Auth      *handler.AuthHandler
	Dishes    *handler.DishHandler
	Sales     *handler.SalesHandler
	Purchases *handler.PurchasesHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// An empty apiKey leaves the front API open to anyone who can reach it.
func New(h Handlers, auth middleware.Authenticator, apiKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Outermost first: Recovery -> Logging -> Metrics -> CORS -> APIKeyAuth -> RequireSession
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS)
	if apiKey != "" {
		r.Use(middleware.APIKeyAuth(apiKey, logger))
	}
	r.Use(middleware.RequireSession(auth, logger))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/register", h.Auth.Register)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/me", h.Auth.Me)
			r.Post("/recover", h.Auth.Recover)
		})

		r.Route("/dishes", func(r chi.Router) {
			r.Get("/", h.Dishes.GetAll)
			r.Post("/", h.Dishes.Create)
			r.Get("/{id}", h.Dishes.GetByID)
			r.Put("/{id}", h.Dishes.Update)
			r.Delete("/{id}", h.Dishes.Delete)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.Sales.View)
			r.Put("/date", h.Sales.SelectDate)
			r.Route("/form", func(r chi.Router) {
				r.Post("/", h.Sales.OpenCreate)
				r.Put("/", h.Sales.SetForm)
				r.Delete("/", h.Sales.Close)
				r.Post("/save", h.Sales.Save)
				r.Post("/{id}", h.Sales.OpenEdit)
			})
			r.Delete("/{id}", h.Sales.Delete)
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", h.Purchases.View)
			r.Put("/month", h.Purchases.SelectMonth)
			r.Post("/dates/{date}/toggle", h.Purchases.ToggleDate)
			r.Route("/form", func(r chi.Router) {
				r.Post("/", h.Purchases.OpenCreate)
				r.Put("/", h.Purchases.SetForm)
				r.Delete("/", h.Purchases.Close)
				r.Post("/save", h.Purchases.Save)
				r.Post("/lines", h.Purchases.AddLine)
				r.Put("/lines/{index}", h.Purchases.UpdateLine)
				r.Put("/lines/{index}/unit", h.Purchases.ChangeUnit)
				r.Delete("/lines/{index}", h.Purchases.RemoveLine)
				r.Post("/{id}", h.Purchases.OpenEdit)
			})
			r.Delete("/{id}", h.Purchases.Delete)
		})
	})

	return r
}
