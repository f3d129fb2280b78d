// Package cache implements the hot-path address cache of spec.md §4.3: a
// durable (chain, address) -> {wallet_id, account_id?} store with three hot
// operations plus a batch variant, kept in sync by the sync package.
package cache

import (
	"context"
	"strings"

	"github.com/ground-x/xscanner/common"
)

// Metadata is the value side of a monitored address: the wallet it belongs
// to and, when present, the customer account. A nil AccountID means the
// address is an Omnibus/master address (spec.md invariant 5).
type Metadata struct {
	WalletID  string  `json:"wallet_id"`
	AccountID *string `json:"account_id,omitempty"`
}

// Entry is one (chain, address) -> Metadata pair, the unit BatchPut
// operates on.
type Entry struct {
	Chain    string
	Address  string
	Metadata Metadata
}

// Cache is the address cache's capability set (spec.md §4.3): Put,
// BatchPut, IsMonitored (an existence probe that must stay O(log N) or
// better and non-blocking for the analyzer), and GetMetadata. Delete and
// Dump are maintenance-only operations (not on the analyzer's hot path),
// used by the xscanner-admin tool.
type Cache interface {
	Put(ctx context.Context, chain, address string, meta Metadata) error
	BatchPut(ctx context.Context, entries []Entry) error
	IsMonitored(ctx context.Context, chain, address string) (bool, error)
	GetMetadata(ctx context.Context, chain, address string) (*Metadata, error)
	Delete(ctx context.Context, chain, address string) error
	Dump(ctx context.Context) ([]Entry, error)
	Close() error
}

// key builds the canonical cache key for a (chain, address) pair
// (spec.md invariant 4).
func key(chain, address string) []byte {
	return []byte(common.CacheKey(chain, address))
}

// splitKey recovers the (chain, address) pair from a raw cache key, for
// the Dump operation. Addresses never contain ':', so the first separator
// is authoritative.
func splitKey(raw string) (chain, address string) {
	idx := strings.IndexByte(raw, ':')
	if idx < 0 {
		return raw, ""
	}
	return raw[:idx], raw[idx+1:]
}
