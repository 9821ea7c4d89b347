/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the staff frontend
  5. httprate:   Per-IP request limit (RATE_LIMIT_PER_MINUTE, 0 disables)

ROUTE GROUPS:
  /healthz                               Liveness + store ping
  /api/rooms/*                           Nightly price, stay quote, blocks
  /api/properties/{id}/calendar          Blocked-cell calendar
  /api/reservations/{id}/*               Cancellation preview
  /api/rate-periods, /api/base-rates     Rate definitions
  /api/policies                          Cancellation policies
  /api/scenarios/*                       Demo scenarios

SECURITY NOTE:
  No authentication middleware. The creation endpoints are staff-side and
  expected to sit behind the property-management backend.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/

// Package api exposes the rule engine over HTTP.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/dcorazolla/reservas-sub002/config"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
	}))
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	}

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/rooms/{id}", func(r chi.Router) {
			r.Get("/price", h.GetNightlyPrice)
			r.Get("/quote", h.GetQuote)
			r.Post("/blocks", h.CreateBlock)
		})

		r.Get("/properties/{id}/calendar", h.GetCalendar)
		r.Get("/reservations/{id}/cancellation-preview", h.PreviewCancellation)

		r.Post("/rate-periods", h.CreateRatePeriod)
		r.Post("/base-rates", h.SaveBaseRate)
		r.Post("/policies", h.CreatePolicy)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
