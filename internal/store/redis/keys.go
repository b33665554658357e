package redis

// KeyPrefixCollection is the prefix for per-video bookmark collections.
// One record per video: key = "bookmarks_" + videoID, value = JSON array.
const KeyPrefixCollection = "bookmarks_"

// CollectionKey returns the Redis key for a video's bookmark collection.
func CollectionKey(videoID string) string {
	return KeyPrefixCollection + videoID
}
