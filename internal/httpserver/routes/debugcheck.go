package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/vaporshelf/edge/internal/httpserver/deps"
	"github.com/vaporshelf/edge/internal/httpserver/handlers"
	"github.com/vaporshelf/edge/internal/httpserver/mw"
)

func init() { Register(registerDebugCheck) }

func registerDebugCheck(r chi.Router, d deps.Deps) {
	r.With(mw.RequireSecret(d.DebugSecret, d.Logger)).Get("/api/debug-check", handlers.DebugCheck(d))
}
