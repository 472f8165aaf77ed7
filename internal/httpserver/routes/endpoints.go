package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/postway/postway/internal/httpserver/deps"
	"github.com/postway/postway/internal/httpserver/handlers"
)

func init() { Register(registerEndpoints) }

func registerEndpoints(r chi.Router, d deps.Deps) {
	r.Route("/api/graphql-endpoints", func(r chi.Router) {
		r.Post("/", handlers.CreateEndpoint(d))
		r.Get("/", handlers.ListEndpoints(d))
		r.Delete("/{id}", handlers.DeleteEndpoint(d))
	})
}
