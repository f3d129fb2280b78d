package cache

import (
	"encoding/json"
	"context"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/ground-x/xscanner/common"
	xlog "github.com/ground-x/xscanner/log"
)

// leveldbCache is the alternate durable address-cache backend, grounded on
// the teacher's storage/database/leveldb_database.go. Both this and
// badgerCache satisfy the same four-operation Cache contract (spec.md §9:
// "any embedded ordered KV store satisfies the contract").
type leveldbCache struct {
	db  *leveldb.DB
	log *xlog.Logger
}

// NewLevelDBCache opens (or creates) a leveldb-backed address cache rooted
// at dir.
func NewLevelDBCache(dir string) (Cache, error) {
	l := xlog.NewModuleLogger("cache/leveldb").With("dir", dir)

	db, err := leveldb.OpenFile(dir, &opt.Options{})
	if err != nil {
		return nil, common.Wrap(common.KindInitialization, "NewLevelDBCache", err)
	}
	l.Info("address cache opened")
	return &leveldbCache{db: db, log: l}, nil
}

func (c *leveldbCache) Put(ctx context.Context, chain, address string, meta Metadata) error {
	val, err := json.Marshal(meta)
	if err != nil {
		return common.Wrap(common.KindLogic, "leveldbCache.Put", err)
	}
	if err := c.db.Put(key(chain, address), val, nil); err != nil {
		return common.Wrap(common.KindTransient, "leveldbCache.Put", err)
	}
	return nil
}

func (c *leveldbCache) BatchPut(ctx context.Context, entries []Entry) error {
	batch := new(leveldb.Batch)
	for _, e := range entries {
		val, err := json.Marshal(e.Metadata)
		if err != nil {
			return common.Wrap(common.KindLogic, "leveldbCache.BatchPut", err)
		}
		batch.Put(key(e.Chain, e.Address), val)
	}
	if err := c.db.Write(batch, nil); err != nil {
		return common.Wrap(common.KindTransient, "leveldbCache.BatchPut", err)
	}
	return nil
}

func (c *leveldbCache) IsMonitored(ctx context.Context, chain, address string) (bool, error) {
	ok, err := c.db.Has(key(chain, address), nil)
	if err != nil {
		return false, common.Wrap(common.KindTransient, "leveldbCache.IsMonitored", err)
	}
	return ok, nil
}

func (c *leveldbCache) GetMetadata(ctx context.Context, chain, address string) (*Metadata, error) {
	val, err := c.db.Get(key(chain, address), nil)
	if err == errors.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, common.Wrap(common.KindTransient, "leveldbCache.GetMetadata", err)
	}
	var meta Metadata
	if err := json.Unmarshal(val, &meta); err != nil {
		return nil, common.Wrap(common.KindDecode, "leveldbCache.GetMetadata", err)
	}
	return &meta, nil
}

func (c *leveldbCache) Delete(ctx context.Context, chain, address string) error {
	if err := c.db.Delete(key(chain, address), nil); err != nil {
		return common.Wrap(common.KindTransient, "leveldbCache.Delete", err)
	}
	return nil
}

func (c *leveldbCache) Dump(ctx context.Context) ([]Entry, error) {
	var out []Entry
	it := c.db.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		var meta Metadata
		if err := json.Unmarshal(it.Value(), &meta); err != nil {
			continue
		}
		chain, address := splitKey(string(it.Key()))
		out = append(out, Entry{Chain: chain, Address: address, Metadata: meta})
	}
	if err := it.Error(); err != nil {
		return nil, common.Wrap(common.KindTransient, "leveldbCache.Dump", err)
	}
	return out, nil
}

func (c *leveldbCache) Close() error {
	return c.db.Close()
}
