package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/postway/postway/internal/httpserver/deps"
	"github.com/postway/postway/internal/httpserver/handlers"
	"github.com/postway/postway/internal/httpserver/mw"
)

func init() { Register(registerHistory) }

func registerHistory(r chi.Router, d deps.Deps) {
	// Only the endpoints that fire outbound calls are rate limited.
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMin,
		TrustProxy:        d.TrustProxy,
	})

	r.Route("/api/history", func(r chi.Router) {
		r.With(limit).Post("/execute", handlers.ExecuteOnly(d))
		r.With(limit).Post("/", handlers.ExecuteAndRecord(d))
		r.Get("/", handlers.ListHistory(d))
		r.Get("/{id}", handlers.GetHistoryByID(d))
		r.Patch("/{id}/favorite", handlers.ToggleFavorite(d))
		r.Delete("/{id}", handlers.DeleteHistory(d))
		r.Delete("/", handlers.ClearHistory(d))
	})
}
