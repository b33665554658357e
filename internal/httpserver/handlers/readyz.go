package handlers

import (
	"net/http"
	"time"

	"github.com/seekmark/seekmark/internal/httpserver/deps"
)

// extensionWindow is how recently the extension must have polled for the
// daemon to call itself connected.
const extensionWindow = 2 * time.Minute

type readyzResponse struct {
	Ready     bool `json:"ready"`
	Redis     bool `json:"redis"`
	Extension bool `json:"extension"`
}

// Readyz reports whether the two external legs are up: the redis store and
// the extension bridge. The daemon still serves reads without the
// extension, so only redis gates readiness.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redisUp := d.Store.Ping(r.Context()) == nil
		extensionUp := d.Bridge.Connected(extensionWindow)

		status := http.StatusOK
		if !redisUp {
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, readyzResponse{
			Ready:     redisUp,
			Redis:     redisUp,
			Extension: extensionUp,
		})
	}
}
