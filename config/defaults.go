package config

import "time"

// Defaults per spec.md §3 and §6.1.
const (
	DefaultRequiredConfirmations uint64 = 12
	DefaultPollInterval                = 10 * time.Second
	DefaultBatchSize             int   = 100
	DefaultFlushInterval               = 5 * time.Second
	DefaultCheckInterval               = 30 * time.Second
	DefaultCheckEnabled          bool   = true
	DefaultKVBackend             string = "badger"

	// BlockChannelCapacity is the bounded block channel's capacity
	// (spec.md §4.2).
	BlockChannelCapacity = 128
)

// Default returns a Config pre-populated with every default named in
// spec.md, ready to be overlaid by a TOML document.
func Default() *Config {
	return &Config{
		Blockchain: map[string]ChainConfig{},
		Repository: RepositoryConfig{
			KVBackend: DefaultKVBackend,
		},
		CustomerSync: CustomerSyncConfig{
			BatchSize:         DefaultBatchSize,
			FlushIntervalSecs: 5,
		},
		ConfirmationChecker: ConfirmationCheckerConfig{
			Enabled:           DefaultCheckEnabled,
			CheckIntervalSecs: 30,
		},
	}
}

// RequiredConfirmationsOrDefault returns the chain's configured confirmation depth,
// defaulting to DefaultRequiredConfirmations when unset.
func (c ChainConfig) RequiredConfirmationsOrDefault() uint64 {
	if c.RequiredConfirmations == 0 {
		return DefaultRequiredConfirmations
	}
	return c.RequiredConfirmations
}
