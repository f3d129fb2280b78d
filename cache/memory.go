package cache

import (
	"context"
	"sync"
)

// memoryCache is a plain map-backed Cache for unit tests; it satisfies the
// same contract as the durable backends without touching disk.
type memoryCache struct {
	mu   sync.RWMutex
	data map[string]Metadata
}

// NewMemoryCache returns an in-memory Cache, primarily for tests.
func NewMemoryCache() Cache {
	return &memoryCache{data: make(map[string]Metadata)}
}

func (c *memoryCache) Put(ctx context.Context, chain, address string, meta Metadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[string(key(chain, address))] = meta
	return nil
}

func (c *memoryCache) BatchPut(ctx context.Context, entries []Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		c.data[string(key(e.Chain, e.Address))] = e.Metadata
	}
	return nil
}

func (c *memoryCache) IsMonitored(ctx context.Context, chain, address string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.data[string(key(chain, address))]
	return ok, nil
}

func (c *memoryCache) GetMetadata(ctx context.Context, chain, address string) (*Metadata, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	meta, ok := c.data[string(key(chain, address))]
	if !ok {
		return nil, nil
	}
	cp := meta
	return &cp, nil
}

func (c *memoryCache) Delete(ctx context.Context, chain, address string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, string(key(chain, address)))
	return nil
}

func (c *memoryCache) Dump(ctx context.Context) ([]Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, 0, len(c.data))
	for raw, meta := range c.data {
		chain, address := splitKey(raw)
		out = append(out, Entry{Chain: chain, Address: address, Metadata: meta})
	}
	return out, nil
}

func (c *memoryCache) Close() error { return nil }
