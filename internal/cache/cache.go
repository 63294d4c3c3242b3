// Package cache provides TTL-bounded key/value storage for enriched item
// records, with SQLite and Postgres backends.
package cache

import (
	"context"
	"time"
)

// Cache is the persistence interface for enriched records. Values are
// written whole with set-with-TTL semantics; there are no partial updates.
type Cache interface {
	// Get returns the value for key, or nil when the key is absent or
	// expired. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, error)
	// SetWithTTL stores value under key, replacing any previous entry.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Purge deletes expired entries and reports how many were removed.
	Purge(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}
