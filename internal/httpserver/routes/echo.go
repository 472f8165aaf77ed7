package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/postway/postway/internal/httpserver/deps"
	"github.com/postway/postway/internal/httpserver/handlers"
)

func init() { Register(registerEcho) }

func registerEcho(r chi.Router, d deps.Deps) {
	r.Post("/api/echo", handlers.Echo(d))
}
