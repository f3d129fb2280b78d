package store

import "fmt"

// New selects the deposit store implementation per spec.md §6.1:
// repository.memory_db=true uses the in-memory variant (no durability);
// otherwise repository.postgresql_url is required.
func New(memoryDB bool, postgresURL string) (Store, error) {
	if memoryDB {
		return NewMemoryStore(), nil
	}
	if postgresURL == "" {
		return nil, fmt.Errorf("store: repository.postgresql_url is required unless memory_db is set")
	}
	return NewGormStore(postgresURL)
}
