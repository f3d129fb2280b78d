package cache

import (
	"context"
	"encoding/json"
	"os"

	"github.com/dgraph-io/badger"

	"github.com/ground-x/xscanner/common"
	xlog "github.com/ground-x/xscanner/log"
)

// badgerCache is the durable address-cache backend, grounded on the
// teacher's storage/database/badger_database.go: same Put/Has/Get/Close
// shape, same convention of a module logger carrying the db directory.
type badgerCache struct {
	db  *badger.DB
	log *xlog.Logger
}

// NewBadgerCache opens (or creates) a badger-backed address cache rooted
// at dir. A corrupt or otherwise unopenable directory is a fatal
// initialization error per spec.md §4.3.
func NewBadgerCache(dir string) (Cache, error) {
	l := xlog.NewModuleLogger("cache/badger").With("dir", dir)

	if fi, err := os.Stat(dir); err == nil && !fi.IsDir() {
		return nil, common.Wrap(common.KindInitialization, "NewBadgerCache", os.ErrInvalid)
	}

	opts := badger.DefaultOptions
	opts.Dir = dir
	opts.ValueDir = dir

	db, err := badger.Open(opts)
	if err != nil {
		return nil, common.Wrap(common.KindInitialization, "NewBadgerCache", err)
	}
	l.Info("address cache opened")
	return &badgerCache{db: db, log: l}, nil
}

func (c *badgerCache) Put(ctx context.Context, chain, address string, meta Metadata) error {
	val, err := json.Marshal(meta)
	if err != nil {
		return common.Wrap(common.KindLogic, "badgerCache.Put", err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(chain, address), val)
	})
	if err != nil {
		return common.Wrap(common.KindTransient, "badgerCache.Put", err)
	}
	return nil
}

func (c *badgerCache) BatchPut(ctx context.Context, entries []Entry) error {
	wb := c.db.NewWriteBatch()
	defer wb.Cancel()
	for _, e := range entries {
		val, err := json.Marshal(e.Metadata)
		if err != nil {
			return common.Wrap(common.KindLogic, "badgerCache.BatchPut", err)
		}
		if err := wb.Set(key(e.Chain, e.Address), val); err != nil {
			return common.Wrap(common.KindTransient, "badgerCache.BatchPut", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return common.Wrap(common.KindTransient, "badgerCache.BatchPut", err)
	}
	return nil
}

func (c *badgerCache) IsMonitored(ctx context.Context, chain, address string) (bool, error) {
	found := false
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key(chain, address))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, common.Wrap(common.KindTransient, "badgerCache.IsMonitored", err)
	}
	return found, nil
}

func (c *badgerCache) GetMetadata(ctx context.Context, chain, address string) (*Metadata, error) {
	var meta Metadata
	found := false
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(chain, address))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(val, &meta); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, common.Wrap(common.KindTransient, "badgerCache.GetMetadata", err)
	}
	if !found {
		return nil, nil
	}
	return &meta, nil
}

func (c *badgerCache) Delete(ctx context.Context, chain, address string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(chain, address))
	})
	if err != nil {
		return common.Wrap(common.KindTransient, "badgerCache.Delete", err)
	}
	return nil
}

func (c *badgerCache) Dump(ctx context.Context) ([]Entry, error) {
	var out []Entry
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			var meta Metadata
			if err := json.Unmarshal(val, &meta); err != nil {
				continue
			}
			chain, address := splitKey(string(item.Key()))
			out = append(out, Entry{Chain: chain, Address: address, Metadata: meta})
		}
		return nil
	})
	if err != nil {
		return nil, common.Wrap(common.KindTransient, "badgerCache.Dump", err)
	}
	return out, nil
}

func (c *badgerCache) Close() error {
	return c.db.Close()
}
