// Package cache provides the cache collaborators around the loader: an
// in-memory codec cache that deduplicates in-flight loads, an in-memory
// raw-byte store, and a disk-backed raw-byte store.
package cache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Skryldev/image-loader/core"
)

// Memory caches load results by ImageKey identity and guarantees at most one
// in-flight load per distinct key: concurrent GetOrLoad calls for equal keys
// collapse onto a single loader invocation.  Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[core.KeyIdentity]*core.Result
	group   singleflight.Group
}

// NewMemory returns an empty cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[core.KeyIdentity]*core.Result)}
}

// GetOrLoad returns the cached result for key, or runs load exactly once
// (even under concurrent callers with equal keys) and caches its success.
// Failures are not cached; the next call retries.
func (c *Memory) GetOrLoad(ctx context.Context, key core.ImageKey, load func(ctx context.Context) (*core.Result, error)) (*core.Result, error) {
	id := key.Identity()

	c.mu.RLock()
	res, ok := c.entries[id]
	c.mu.RUnlock()
	if ok {
		return res, nil
	}

	v, err, _ := c.group.Do(flightKey(id), func() (interface{}, error) {
		// Re-check under the flight: a concurrent winner may have stored.
		c.mu.RLock()
		cached, hit := c.entries[id]
		c.mu.RUnlock()
		if hit {
			return cached, nil
		}
		res, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[id] = res
		c.mu.Unlock()
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.Result), nil
}

// Get returns the cached result for key, if present.
func (c *Memory) Get(key core.ImageKey) (*core.Result, bool) {
	c.mu.RLock()
	res, ok := c.entries[key.Identity()]
	c.mu.RUnlock()
	return res, ok
}

// Evict drops the entry for key.  Implements core.EvictionCache.
func (c *Memory) Evict(key core.ImageKey) {
	c.mu.Lock()
	delete(c.entries, key.Identity())
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// flightKey flattens an identity into singleflight's string keyspace.
func flightKey(id core.KeyIdentity) string {
	return fmt.Sprintf("%s\x00%s\x00%g\x00%s\x00%s", id.Kind, id.Origin, id.Scale, id.Scope, id.CacheKey)
}
