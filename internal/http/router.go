package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/somoapp/campus-events/internal/observability"
	"github.com/somoapp/campus-events/internal/rateLimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(AuthMiddleware)
	r.Use(MetricsMiddleware)

	r.Route("/api", func(api chi.Router) {
		api.Get("/universities", h.ListCampuses)
		api.Get("/universities/nearest", h.NearestCampus)
		api.With(RateLimitMiddleware(rl, 10)).Get("/universities/nearest_many", h.NearestCampuses)
		api.Get("/universities/nearest_with_events", h.NearestWithEvents)
		api.Get("/universities/validate_domain", h.ValidateDomain)

		api.With(RateLimitMiddleware(rl, 60)).Get("/events", h.ListEvents)
		api.Post("/events/create", h.CreateEvent)
		api.Post("/events/{id}/reserve", h.ReserveSeat)
		api.Post("/events/{id}/ticket", h.RegisterTicket)

		api.Get("/user/optins", h.ListOptIns)
	})

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
