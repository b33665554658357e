package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/seekmark/seekmark/internal/domain"
)

// Store persists per-video bookmark collections in Redis.
//
// It keeps no in-memory state between calls: every read reflects the durable
// state at call time, and every mutation is a load-modify-save cycle. The
// sequences are not isolated across concurrent callers; a lost update is
// possible when two writes to the same video overlap.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis bookmark store.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Load returns the persisted collection for videoID.
// A missing or malformed record reads as an empty collection, never an error.
func (s *Store) Load(ctx context.Context, videoID string) ([]domain.Bookmark, error) {
	data, err := s.client.Get(ctx, CollectionKey(videoID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.Bookmark{}, nil
		}
		return nil, fmt.Errorf("failed to load bookmarks for %s: %w", videoID, err)
	}

	var bookmarks []domain.Bookmark
	if err := json.Unmarshal(data, &bookmarks); err != nil {
		// Unreadable backing record is treated as empty, not as an error.
		return []domain.Bookmark{}, nil
	}
	if bookmarks == nil {
		bookmarks = []domain.Bookmark{}
	}

	return bookmarks, nil
}

// Save replaces the entire collection for videoID.
// Overwrite semantics, not merge: callers load, mutate, then save.
func (s *Store) Save(ctx context.Context, videoID string, bookmarks []domain.Bookmark) error {
	if bookmarks == nil {
		bookmarks = []domain.Bookmark{}
	}

	data, err := json.Marshal(bookmarks)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmarks for %s: %w", videoID, err)
	}

	if err := s.client.Set(ctx, CollectionKey(videoID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save bookmarks for %s: %w", videoID, err)
	}

	return nil
}

// Append loads the collection, pushes the bookmark and saves it back.
func (s *Store) Append(ctx context.Context, videoID string, bookmark domain.Bookmark) error {
	bookmarks, err := s.Load(ctx, videoID)
	if err != nil {
		return err
	}

	bookmarks = append(bookmarks, bookmark)

	return s.Save(ctx, videoID, bookmarks)
}

// Remove filters the bookmark with bookmarkID out of the collection.
// Removing an id that is not present is a no-op.
func (s *Store) Remove(ctx context.Context, videoID, bookmarkID string) error {
	bookmarks, err := s.Load(ctx, videoID)
	if err != nil {
		return err
	}

	filtered := bookmarks[:0]
	for _, b := range bookmarks {
		if b.ID != bookmarkID {
			filtered = append(filtered, b)
		}
	}

	return s.Save(ctx, videoID, filtered)
}

// Ping reports whether the backing Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
