package cache

import "time"

// Cache defines a minimal key-value cache API with a TTL per entry.
type Cache[K comparable, V any] interface {
	// Get returns the value and whether it was present and not expired.
	// An expired entry is removed as a side effect.
	Get(key K) (V, bool)

	// Set stores the value, replacing any previous entry. If ttl <= 0 the
	// cache's default TTL is used.
	Set(key K, value V, ttl time.Duration)

	// Invalidate removes a key if present.
	Invalidate(key K)

	// Has reports whether a key is present and not expired.
	Has(key K) bool

	// Len returns the number of non-expired items currently stored.
	Len() int

	// Clear removes all entries.
	Clear()

	// PurgeExpired scans and removes expired entries.
	PurgeExpired()
}
