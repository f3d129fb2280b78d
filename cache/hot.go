package cache

import (
	"context"
	"encoding/json"

	"github.com/VictoriaMetrics/fastcache"

	"github.com/ground-x/xscanner/common"
)

// hotCacheBytes sizes the in-process read cache VictoriaMetrics/fastcache
// keeps in front of the durable backend. fastcache is a bounded,
// GC-friendly byte-oriented cache; it exists purely to keep IsMonitored
// non-blocking on the analyzer's hot path (spec.md §4.3), never as a
// source of truth.
const hotCacheBytes = 32 * 1024 * 1024

// tombstone marks a confirmed-absent key in the hot layer so that a miss
// doesn't fall through to the durable backend on every lookup.
var tombstone = []byte{0}

// hotCache decorates a durable Cache with a bounded in-process read cache.
// Writes go through to the backend first and are then reflected in the hot
// layer; reads check the hot layer before touching disk.
type hotCache struct {
	backend Cache
	hot     *fastcache.Cache
}

// WithHotLayer wraps backend with an in-process fastcache read cache.
func WithHotLayer(backend Cache) Cache {
	return &hotCache{backend: backend, hot: fastcache.New(hotCacheBytes)}
}

func (c *hotCache) Put(ctx context.Context, chain, address string, meta Metadata) error {
	if err := c.backend.Put(ctx, chain, address, meta); err != nil {
		return err
	}
	c.store(chain, address, meta)
	return nil
}

func (c *hotCache) BatchPut(ctx context.Context, entries []Entry) error {
	if err := c.backend.BatchPut(ctx, entries); err != nil {
		return err
	}
	for _, e := range entries {
		c.store(e.Chain, e.Address, e.Metadata)
	}
	return nil
}

func (c *hotCache) IsMonitored(ctx context.Context, chain, address string) (bool, error) {
	k := key(chain, address)
	if v, ok := c.hot.HasGet(nil, k); ok {
		return len(v) > 0 && v[0] != tombstone[0], nil
	}
	meta, err := c.backend.GetMetadata(ctx, chain, address)
	if err != nil {
		return false, err
	}
	if meta == nil {
		c.hot.Set(k, tombstone)
		return false, nil
	}
	c.store(chain, address, *meta)
	return true, nil
}

func (c *hotCache) GetMetadata(ctx context.Context, chain, address string) (*Metadata, error) {
	k := key(chain, address)
	if v, ok := c.hot.HasGet(nil, k); ok {
		if len(v) == 0 || v[0] == tombstone[0] {
			return nil, nil
		}
		var meta Metadata
		if err := json.Unmarshal(v, &meta); err != nil {
			return nil, common.Wrap(common.KindDecode, "hotCache.GetMetadata", err)
		}
		return &meta, nil
	}
	meta, err := c.backend.GetMetadata(ctx, chain, address)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		c.hot.Set(k, tombstone)
		return nil, nil
	}
	c.store(chain, address, *meta)
	return meta, nil
}

// Delete removes a key from both the durable backend and the hot layer.
// fastcache has no delete primitive, so the hot layer entry is overwritten
// with a tombstone instead (equivalent to a miss on the next read).
func (c *hotCache) Delete(ctx context.Context, chain, address string) error {
	if err := c.backend.Delete(ctx, chain, address); err != nil {
		return err
	}
	c.hot.Set(key(chain, address), tombstone)
	return nil
}

// Dump bypasses the hot layer entirely: it is a maintenance read of the
// durable backend, not a hot-path lookup.
func (c *hotCache) Dump(ctx context.Context) ([]Entry, error) {
	return c.backend.Dump(ctx)
}

func (c *hotCache) store(chain, address string, meta Metadata) {
	val, err := json.Marshal(meta)
	if err != nil {
		return
	}
	c.hot.Set(key(chain, address), val)
}

func (c *hotCache) Close() error {
	c.hot.Reset()
	return c.backend.Close()
}
