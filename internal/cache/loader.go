package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the value for a missing key.
type LoadFunc[V any] func(ctx context.Context) (V, error)

// Loader is a get-or-compute wrapper around a string-keyed Cache.
// Concurrent misses for the same key share a single load, and only
// successful loads are stored.
type Loader[V any] struct {
	cache Cache[string, V]
	group singleflight.Group

	// gens counts invalidations per key. A load only stores its result if
	// the key's generation is unchanged since the load started.
	mu   sync.Mutex
	gens map[string]uint64
}

// NewLoader wraps c.
func NewLoader[V any](c Cache[string, V]) *Loader[V] {
	return &Loader[V]{cache: c, gens: make(map[string]uint64)}
}

// Invalidate drops key and discards the result of any load for key that is
// already running. Callers arriving afterwards start a fresh load.
func (l *Loader[V]) Invalidate(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gens[key]++
	l.group.Forget(key)
	l.cache.Invalidate(key)
}

func (l *Loader[V]) generation(key string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gens[key]
}

// store sets key unless it was invalidated after gen was read.
func (l *Loader[V]) store(key string, gen uint64, v V, ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gens[key] != gen {
		return
	}
	l.cache.Set(key, v, ttl)
}

// Cache returns the underlying store.
func (l *Loader[V]) Cache() Cache[string, V] {
	return l.cache
}

// Get returns the cached value for key, or runs load and stores its result
// under ttl. hit reports whether the value came from the cache.
//
// The load runs detached from ctx's cancellation so that one caller going
// away does not fail every other caller waiting on the same key; loads are
// expected to bound themselves with their own timeouts.
func (l *Loader[V]) Get(ctx context.Context, key string, ttl time.Duration, load LoadFunc[V]) (value V, hit bool, err error) {
	if v, ok := l.cache.Get(key); ok {
		return v, true, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key, func() (result any, err error) {
		// singleflight re-panics DoChan panics on a fresh goroutine, which
		// would take the process down.
		defer func() {
			if r := recover(); r != nil {
				result, err = nil, fmt.Errorf("load %q panicked: %v", key, r)
			}
		}()
		gen := l.generation(key)
		// Another flight may have filled the key between our miss and now.
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		l.store(key, gen, v, ttl)
		return v, nil
	})

	select {
	case <-ctx.Done():
		var zero V
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, false, res.Err
		}
		v, _ := res.Val.(V)
		return v, false, nil
	}
}
