package cache

import (
	"sync"

	"github.com/Skryldev/image-loader/core"
	"github.com/Skryldev/image-loader/utils"
)

// RawData is the in-memory core.RawDataCache.  Put stores its own copy of the
// payload; Get returns the stored slice, which callers must treat as
// read-only.  Writes for a given key are serialized by the cache lock.
type RawData struct {
	mu         sync.Mutex
	entries    map[core.KeyIdentity][]byte
	order      []core.KeyIdentity // FIFO for maxEntries eviction
	maxEntries int
}

// NewRawData returns an empty raw-byte cache.  maxEntries caps retained
// payloads, evicting oldest-first; 0 means unbounded.
func NewRawData(maxEntries int) *RawData {
	return &RawData{entries: make(map[core.KeyIdentity][]byte), maxEntries: maxEntries}
}

func (c *RawData) Put(key core.ImageKey, data []byte) {
	id := key.Identity()
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[id]; !exists {
		c.order = append(c.order, id)
		if c.maxEntries > 0 && len(c.order) > c.maxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
	}
	c.entries[id] = utils.CloneBytes(data)
}

func (c *RawData) Get(key core.ImageKey) ([]byte, bool) {
	c.mu.Lock()
	data, ok := c.entries[key.Identity()]
	c.mu.Unlock()
	return data, ok
}

func (c *RawData) Remove(key core.ImageKey) {
	id := key.Identity()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[id]; !ok {
		return
	}
	delete(c.entries, id)
	for i, queued := range c.order {
		if queued == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of retained payloads.
func (c *RawData) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
