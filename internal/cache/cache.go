package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key for a topic-scoped artifact. kind separates
// the namespaces ("article" for fetched reference text, "index" for a
// persisted corpus index).
func Key(kind, topic string) string {
	hash := sha256.Sum256([]byte(topic))
	return "wikiprov:v1:" + kind + ":" + hex.EncodeToString(hash[:])
}
