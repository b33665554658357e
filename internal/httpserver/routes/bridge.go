package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/seekmark/seekmark/internal/httpserver/deps"
	"github.com/seekmark/seekmark/internal/httpserver/handlers"
)

func init() { Register(registerBridge) }

func registerBridge(r chi.Router, d deps.Deps) {
	r.Get("/bridge/pull", handlers.BridgePull(d))
	r.Post("/bridge/push", handlers.BridgePush(d))
}
