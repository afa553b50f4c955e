package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"time"
)

// CacheService represents a generic cache service
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

// SentKey returns the notification guard key of a listing under a link.
// Links are hashed to stay within memcache key limits.
func SentKey(link, id string) string {
	sum := sha1.Sum([]byte(link))
	return "encar:sent:" + hex.EncodeToString(sum[:8]) + ":" + id
}
