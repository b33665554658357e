package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/seekmark/seekmark/internal/httpserver/deps"
	"github.com/seekmark/seekmark/internal/httpserver/handlers"
)

func init() { Register(registerJump) }

func registerJump(r chi.Router, d deps.Deps) {
	r.Post("/api/jump", handlers.Jump(d))
	r.Get("/api/state", handlers.State(d))
}
