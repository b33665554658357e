package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/seekmark/seekmark/internal/httpserver/deps"
	"github.com/seekmark/seekmark/internal/logger"
)

type jumpRequest struct {
	VideoID string  `json:"videoId"`
	Time    float64 `json:"time"`
}

type jumpResponse struct {
	OK     bool `json:"ok"`
	Seeked bool `json:"seeked"`
}

// Jump is the OPEN_AT_TIMESTAMP intent: foreground a tab for the video and
// drive it to the requested offset. An unconfirmed seek is reported in
// `seeked` but does not fail the request; the tab is still at the right
// video.
func Jump(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req jumpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", "")
			return
		}
		req.VideoID = strings.TrimSpace(req.VideoID)
		if req.VideoID == "" {
			writeError(w, http.StatusBadRequest, "missing_video_id", "")
			return
		}

		d.Logger.Info("jump request",
			logger.String("video", req.VideoID),
			logger.Float64("time", req.Time))

		seeked, err := d.Synchronizer.Jump(r.Context(), req.VideoID, req.Time)
		if err != nil {
			d.Logger.Warn("jump failed to open tab",
				logger.String("video", req.VideoID),
				logger.Error(err))
			writeError(w, http.StatusBadGateway, "extension_unreachable", "")
			return
		}

		writeJSON(w, http.StatusOK, jumpResponse{OK: true, Seeked: seeked})
	}
}
