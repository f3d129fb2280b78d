package cache

import "fmt"

// New opens the durable address cache backend named by kvBackend ("badger"
// or "leveldb", spec.md's repository.leveldb_path / kv_backend config),
// wrapped with the fastcache hot layer.
func New(kvBackend, dir string) (Cache, error) {
	var backend Cache
	var err error
	switch kvBackend {
	case "", "badger":
		backend, err = NewBadgerCache(dir)
	case "leveldb":
		backend, err = NewLevelDBCache(dir)
	default:
		return nil, fmt.Errorf("cache: unknown kv_backend %q", kvBackend)
	}
	if err != nil {
		return nil, err
	}
	return WithHotLayer(backend), nil
}
