package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/seekmark/seekmark/internal/domain"
	"github.com/seekmark/seekmark/internal/httpserver/deps"
	"github.com/seekmark/seekmark/internal/logger"
	"github.com/seekmark/seekmark/internal/tabs"
)

type listResponse struct {
	VideoID   string            `json:"videoId"`
	Bookmarks []domain.Bookmark `json:"bookmarks"`
}

// ListBookmarks returns the collection for a video, newest first.
// Without an explicit videoId it resolves the active tab's video.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		videoID := strings.TrimSpace(r.URL.Query().Get("videoId"))
		if videoID == "" {
			var ok bool
			videoID, ok = activeWatchVideoID(w, r, d)
			if !ok {
				return
			}
		}

		bookmarks, err := d.Store.Load(ctx, videoID)
		if err != nil {
			d.Logger.Error("failed to load bookmarks",
				logger.String("video", videoID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "store_unavailable", "")
			return
		}

		domain.SortNewestFirst(bookmarks)
		writeJSON(w, http.StatusOK, listResponse{VideoID: videoID, Bookmarks: bookmarks})
	}
}

// AddBookmark records the active tab's current playback position.
// Precondition: the active tab is a watch page (409 otherwise); the page
// agent must see a media element (503 "page not ready" otherwise).
func AddBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tab, err := d.Driver.Active(ctx)
		if err != nil {
			if errors.Is(err, tabs.ErrNoActiveTab) {
				writeError(w, http.StatusConflict, "not_on_watch_page",
					"Open a watch page to add bookmarks.")
				return
			}
			d.Logger.Warn("active tab lookup failed", logger.Error(err))
			writeError(w, http.StatusBadGateway, "extension_unreachable", "")
			return
		}

		videoID, ok := domain.VideoIDFromURL(d.WatchHost, tab.URL)
		if !ok {
			writeError(w, http.StatusConflict, "not_on_watch_page",
				"Open a watch page to add bookmarks.")
			return
		}

		state, err := d.Agent.VideoState(ctx, tab.ID)
		if err != nil || !state.OK {
			if err != nil {
				d.Logger.Debug("video state round trip failed", logger.Error(err))
			}
			writeError(w, http.StatusServiceUnavailable, "page_not_ready",
				"Couldn't access the video player. Play the video once and try again.")
			return
		}

		bookmark := domain.NewBookmark(state.CurrentTime, domain.CleanTitle(state.Title))
		if err := d.Store.Append(ctx, videoID, bookmark); err != nil {
			d.Logger.Error("failed to append bookmark",
				logger.String("video", videoID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "store_unavailable", "")
			return
		}

		d.Logger.Info("bookmark saved",
			logger.String("video", videoID),
			logger.String("id", bookmark.ID),
			logger.Int64("time", bookmark.Time))

		writeJSON(w, http.StatusCreated, bookmark)
	}
}

// DeleteBookmark removes one bookmark from a video's collection.
// Deleting an id that is not present is a no-op and still answers 204.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := chi.URLParam(r, "videoID")
		bookmarkID := chi.URLParam(r, "bookmarkID")

		if err := d.Store.Remove(r.Context(), videoID, bookmarkID); err != nil {
			d.Logger.Error("failed to remove bookmark",
				logger.String("video", videoID),
				logger.String("id", bookmarkID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "store_unavailable", "")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// activeWatchVideoID resolves the active tab's video id, writing the
// precondition error itself when the tab is not a watch page.
func activeWatchVideoID(w http.ResponseWriter, r *http.Request, d deps.Deps) (string, bool) {
	tab, err := d.Driver.Active(r.Context())
	if err != nil {
		if errors.Is(err, tabs.ErrNoActiveTab) {
			writeError(w, http.StatusConflict, "not_on_watch_page",
				"Open a watch page to see bookmarks.")
			return "", false
		}
		writeError(w, http.StatusBadGateway, "extension_unreachable", "")
		return "", false
	}

	videoID, ok := domain.VideoIDFromURL(d.WatchHost, tab.URL)
	if !ok {
		writeError(w, http.StatusConflict, "not_on_watch_page",
			"Open a watch page to see bookmarks.")
		return "", false
	}
	return videoID, true
}
