package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTTL is used when Options.DefaultTTL is left at zero.
const DefaultTTL = 15 * time.Minute

// entry stores a cached value and its absolute expiration timestamp.
type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiration
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// SimpleCache is a map-backed cache with optional concurrency safety.
// Expired entries are removed lazily when read, by PurgeExpired, or by the
// janitor started with StartJanitor.
type SimpleCache[K comparable, V any] struct {
	// If muPtr is nil, the cache is NOT goroutine-safe.
	muPtr *sync.RWMutex

	items      map[K]entry[V]
	defaultTTL time.Duration
	maxEntries int
	clock      clockwork.Clock
}

// Options controls construction of a SimpleCache.
type Options struct {
	// ConcurrencySafe controls whether operations are guarded by a RWMutex.
	ConcurrencySafe bool

	// DefaultTTL applies to Set calls with ttl <= 0. Zero selects DefaultTTL;
	// a negative value disables expiry for such calls.
	DefaultTTL time.Duration

	// MaxEntries caps the number of stored entries. Zero means unbounded.
	MaxEntries int

	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// NewSimpleCache constructs a new SimpleCache with the given options.
func NewSimpleCache[K comparable, V any](opts Options) *SimpleCache[K, V] {
	var mu *sync.RWMutex
	if opts.ConcurrencySafe {
		mu = &sync.RWMutex{}
	}
	ttl := opts.DefaultTTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SimpleCache[K, V]{
		muPtr:      mu,
		items:      make(map[K]entry[V]),
		defaultTTL: ttl,
		maxEntries: opts.MaxEntries,
		clock:      clock,
	}
}

func (c *SimpleCache[K, V]) lockR() func() {
	if c.muPtr == nil {
		return func() {}
	}
	c.muPtr.RLock()
	return c.muPtr.RUnlock
}

func (c *SimpleCache[K, V]) lockW() func() {
	if c.muPtr == nil {
		return func() {}
	}
	c.muPtr.Lock()
	return c.muPtr.Unlock
}

// Get implements Cache.Get.
func (c *SimpleCache[K, V]) Get(key K) (V, bool) {
	var zero V

	unlock := c.lockR()
	e, ok := c.items[key]
	unlock()
	if !ok {
		return zero, false
	}
	if !e.expired(c.clock.Now()) {
		return e.value, true
	}

	// Re-check under the write lock: a concurrent Set may have replaced it.
	unlock = c.lockW()
	defer unlock()
	if cur, ok := c.items[key]; ok && cur.expired(c.clock.Now()) {
		delete(c.items, key)
	}
	return zero, false
}

// Set implements Cache.Set.
func (c *SimpleCache[K, V]) Set(key K, value V, ttl time.Duration) {
	unlock := c.lockW()
	defer unlock()

	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := c.clock.Now()
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	if _, exists := c.items[key]; !exists && c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.makeRoomLocked(now)
	}
	c.items[key] = entry[V]{
		value:     value,
		expiresAt: exp,
	}
}

// makeRoomLocked drops expired entries and, if the cache is still full,
// the entry closest to expiry. Entries without expiry are evicted last.
func (c *SimpleCache[K, V]) makeRoomLocked(now time.Time) {
	c.purgeLocked(now)
	if len(c.items) < c.maxEntries {
		return
	}
	var (
		victim    K
		victimExp time.Time
		found     bool
	)
	for k, e := range c.items {
		if !found {
			victim, victimExp, found = k, e.expiresAt, true
			continue
		}
		switch {
		case victimExp.IsZero() && !e.expiresAt.IsZero():
			victim, victimExp = k, e.expiresAt
		case !e.expiresAt.IsZero() && e.expiresAt.Before(victimExp):
			victim, victimExp = k, e.expiresAt
		}
	}
	if found {
		delete(c.items, victim)
	}
}

// Invalidate implements Cache.Invalidate.
func (c *SimpleCache[K, V]) Invalidate(key K) {
	unlock := c.lockW()
	defer unlock()
	delete(c.items, key)
}

// Has implements Cache.Has.
func (c *SimpleCache[K, V]) Has(key K) bool {
	unlock := c.lockR()
	defer unlock()
	e, ok := c.items[key]
	if !ok {
		return false
	}
	return !e.expired(c.clock.Now())
}

// Len implements Cache.Len. It counts only non-expired entries.
func (c *SimpleCache[K, V]) Len() int {
	unlock := c.lockR()
	defer unlock()
	now := c.clock.Now()
	count := 0
	for _, e := range c.items {
		if !e.expired(now) {
			count++
		}
	}
	return count
}

// Clear implements Cache.Clear.
func (c *SimpleCache[K, V]) Clear() {
	unlock := c.lockW()
	defer unlock()
	c.items = make(map[K]entry[V])
}

// PurgeExpired implements Cache.PurgeExpired.
func (c *SimpleCache[K, V]) PurgeExpired() {
	unlock := c.lockW()
	defer unlock()
	c.purgeLocked(c.clock.Now())
}

func (c *SimpleCache[K, V]) purgeLocked(now time.Time) {
	for k, e := range c.items {
		if e.expired(now) {
			delete(c.items, k)
		}
	}
}

// StartJanitor runs PurgeExpired every interval until ctx is done. The
// returned channel is closed once the janitor goroutine has exited.
func (c *SimpleCache[K, V]) StartJanitor(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}
	ticker := c.clock.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				c.PurgeExpired()
			}
		}
	}()
	return done
}

// Ensure SimpleCache implements Cache at compile time.
var _ Cache[any, any] = (*SimpleCache[any, any])(nil)
