package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/seekmark/seekmark/internal/bridge"
	"github.com/seekmark/seekmark/internal/httpserver/deps"
	"github.com/seekmark/seekmark/internal/logger"
)

type pullResponse struct {
	Commands []bridge.Command `json:"commands"`
}

type pushResponse struct {
	Accepted bool `json:"accepted"`
}

// BridgePull is the extension's long poll for tab commands. The request is
// held open up to the configured window when the queue is empty.
func BridgePull(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmds := d.Bridge.Pull(r.Context(), d.PullTimeout)
		writeJSON(w, http.StatusOK, pullResponse{Commands: cmds})
	}
}

// BridgePush receives one command result from the extension. Results whose
// command already timed out or was swept are acknowledged but dropped.
func BridgePush(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var res bridge.Result
		if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", "")
			return
		}
		if res.ID == "" {
			writeError(w, http.StatusBadRequest, "missing_id", "")
			return
		}

		accepted := d.Bridge.Push(res)
		if !accepted {
			d.Logger.Debug("stale bridge result dropped",
				logger.String("id", res.ID))
		}

		writeJSON(w, http.StatusOK, pushResponse{Accepted: accepted})
	}
}
