package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// titleSuffix is appended by the site to document titles and stripped
// before a title is stored.
const titleSuffix = " - YouTube"

// BuildWatchURL constructs the canonical watch URL for a video at an offset.
// The offset is clamped and truncated, the identifier percent-encoded.
// Example: BuildWatchURL("www.youtube.com", "abc123", 75.9)
// -> "https://www.youtube.com/watch?v=abc123&t=75s"
func BuildWatchURL(host, videoID string, t float64) string {
	return fmt.Sprintf("https://%s/watch?v=%s&t=%ds", host, url.QueryEscape(videoID), NormalizeTime(t))
}

// WatchPattern is the tab-query pattern matching every watch page on host.
func WatchPattern(host string) string {
	return fmt.Sprintf("https://%s/watch*", host)
}

// VideoIDFromURL extracts the video identifier from a watch page URL.
// Returns "" and false for anything that is not a watch page on host.
func VideoIDFromURL(host, raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Hostname() != host || u.Path != "/watch" {
		return "", false
	}
	id := u.Query().Get("v")
	if id == "" {
		return "", false
	}
	return id, true
}

// IsWatchURL reports whether raw is a watch page on host carrying a video id.
func IsWatchURL(host, raw string) bool {
	_, ok := VideoIDFromURL(host, raw)
	return ok
}

// CleanTitle strips the site suffix and surrounding whitespace.
// An empty result degrades to DefaultTitle.
func CleanTitle(title string) string {
	title = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(title), titleSuffix))
	if title == "" {
		return DefaultTitle
	}
	return title
}
