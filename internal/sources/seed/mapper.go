package seed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seekmark/seekmark/internal/domain"
)

// Mapper converts seed entries to per-video bookmark collections.
type Mapper struct{}

// NewMapper creates a seed mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map builds bookmark collections keyed by video id. Entries without a
// video id are skipped; an unparseable mark fails the whole file so a typo
// is noticed instead of silently dropped.
func (m *Mapper) Map(config Config) (map[string][]domain.Bookmark, error) {
	collections := make(map[string][]domain.Bookmark, len(config))
	now := time.Now().UnixMilli()

	for _, entry := range config {
		if strings.TrimSpace(entry.Video) == "" {
			continue
		}

		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = domain.DefaultTitle
		}

		for _, mark := range entry.Marks {
			sec, err := ParseMark(mark)
			if err != nil {
				return nil, fmt.Errorf("video %s: %w", entry.Video, err)
			}
			collections[entry.Video] = append(collections[entry.Video], domain.Bookmark{
				ID:         uuid.NewString(),
				Time:       sec,
				VideoTitle: title,
				CreatedAt:  now,
			})
		}
	}

	return collections, nil
}

// ParseMark parses "ss", "m:ss" or "h:mm:ss" into whole seconds.
func ParseMark(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty mark")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid mark %q", s)
	}

	var total int64
	for _, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid mark %q", s)
		}
		total = total*60 + n
	}

	return total, nil
}
