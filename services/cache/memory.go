package cachesvc

import (
	"context"
	"sync"

	"github.com/trezcool/mbatrack/core"
)

// MemoryCache is a process local ViewCache.
type MemoryCache struct {
	mu    sync.RWMutex
	views map[string][]byte
}

var _ core.ViewCache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{views: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.views[key]
	return data, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[key] = data
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.views, key)
	}
	return nil
}
