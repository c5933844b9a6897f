package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/vaporshelf/edge/internal/httpserver/deps"
	"github.com/vaporshelf/edge/internal/httpserver/handlers"
)

func init() { Register(registerGithub) }

func registerGithub(r chi.Router, d deps.Deps) {
	r.With(d.APILimiter).Get("/api/github", handlers.Github(d))
}
