package handlers

import (
	"errors"
	"net/http"

	"github.com/seekmark/seekmark/internal/domain"
	"github.com/seekmark/seekmark/internal/httpserver/deps"
	"github.com/seekmark/seekmark/internal/tabs"
)

type stateResponse struct {
	OK            bool    `json:"ok"`
	VideoID       string  `json:"videoId,omitempty"`
	CurrentTime   float64 `json:"currentTime,omitempty"`
	FormattedTime string  `json:"formattedTime,omitempty"`
	Title         string  `json:"title,omitempty"`
}

// State reports the active watch tab's playback position and title, for
// the popup header. Not being on a watch page is a 409 precondition, not
// a synchronizer failure.
func State(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tab, err := d.Driver.Active(ctx)
		if err != nil {
			if errors.Is(err, tabs.ErrNoActiveTab) {
				writeError(w, http.StatusConflict, "not_on_watch_page", "")
				return
			}
			writeError(w, http.StatusBadGateway, "extension_unreachable", "")
			return
		}

		videoID, ok := domain.VideoIDFromURL(d.WatchHost, tab.URL)
		if !ok {
			writeError(w, http.StatusConflict, "not_on_watch_page", "")
			return
		}

		state, err := d.Agent.VideoState(ctx, tab.ID)
		if err != nil || !state.OK {
			writeError(w, http.StatusServiceUnavailable, "page_not_ready", "")
			return
		}

		writeJSON(w, http.StatusOK, stateResponse{
			OK:            true,
			VideoID:       videoID,
			CurrentTime:   state.CurrentTime,
			FormattedTime: domain.FormatTime(domain.NormalizeTime(state.CurrentTime)),
			Title:         domain.CleanTitle(state.Title),
		})
	}
}
