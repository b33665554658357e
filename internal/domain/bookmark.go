package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is stored when the page yields no usable title.
const DefaultTitle = "YouTube Video"

// Bookmark is one saved timestamp inside a video.
//
// Bookmarks are partitioned per video: the owning video identifier is the
// storage key, not a field. The JSON tags are the persisted wire format.
type Bookmark struct {
	// ID is an opaque unique identifier, generated at creation, never reused.
	ID string `json:"id"`

	// Time is the offset to seek to, in whole non-negative seconds.
	Time int64 `json:"time"`

	// VideoTitle is a best-effort label captured at creation time.
	// It is never re-derived later, even if the page title drifts.
	VideoTitle string `json:"videoTitle"`

	// CreatedAt is epoch milliseconds, used only for newest-first ordering.
	CreatedAt int64 `json:"createdAt"`
}

// NewBookmark builds a bookmark at the given playback position.
// The position is normalized (clamped to >= 0, truncated to seconds) and the
// title falls back to DefaultTitle when empty.
func NewBookmark(currentTime float64, title string) Bookmark {
	if title == "" {
		title = DefaultTitle
	}
	return Bookmark{
		ID:         uuid.NewString(),
		Time:       NormalizeTime(currentTime),
		VideoTitle: title,
		CreatedAt:  time.Now().UnixMilli(),
	}
}

// NormalizeTime clamps to zero and truncates to whole seconds.
// 75.9 becomes 75, not 76.
func NormalizeTime(t float64) int64 {
	if t < 0 {
		return 0
	}
	return int64(t)
}

// SortNewestFirst orders a collection by CreatedAt descending, in place.
func SortNewestFirst(bookmarks []Bookmark) {
	sort.SliceStable(bookmarks, func(i, j int) bool {
		return bookmarks[i].CreatedAt > bookmarks[j].CreatedAt
	})
}

// FormatTime renders seconds as "h:mm:ss", or "m:ss" under an hour.
func FormatTime(sec int64) string {
	if sec < 0 {
		sec = 0
	}
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
