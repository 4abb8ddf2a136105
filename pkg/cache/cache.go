// Package cache provides response caching for the remote server client.
//
// Three backends are available: a file-based cache for normal CLI use, a
// Redis-backed cache for shared environments, and a null cache that
// disables caching entirely. All backends store opaque bytes under string
// keys with a per-entry TTL.
//
// Backends return raw bytes, never live references into cached storage:
// callers decode a fresh value on every access, so a cached graph can
// never be mutated through an alias.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores opaque response bytes under string keys.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss (absent
	// or expired entry); the error reports backend failures only.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given time-to-live. A ttl of 0 means the
	// entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Key generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...).
func Key(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
