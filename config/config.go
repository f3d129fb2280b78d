// Package config loads the xscanner TOML configuration document described
// in spec.md §6.1, with environment variable overrides.
package config

import (
	"bufio"
	"fmt"
	"os"
	"reflect"
	"time"
	"unicode"

	"github.com/naoina/toml"
	"github.com/pkg/errors"

	"github.com/ground-x/xscanner/common"
)

// tomlSettings mirrors the teacher's cmd/ranger/config.go customization:
// key and field names are compared as written, with no case folding or
// underscore normalization; the toml struct tags below give each key's
// name.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see type %s", rt.String())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// ChainConfig is the per-chain section under [blockchain.<name>].
type ChainConfig struct {
	Api                   string `toml:"api"`
	Symbol                string `toml:"symbol"`
	StartBlock            uint64 `toml:"start_block"`
	IntervalSecs          int    `toml:"interval_secs"`
	RequiredConfirmations uint64 `toml:"required_confirmations"`
}

// PollInterval returns the configured poll interval as a duration.
func (c ChainConfig) PollInterval() time.Duration {
	if c.IntervalSecs <= 0 {
		return DefaultPollInterval
	}
	return time.Duration(c.IntervalSecs) * time.Second
}

// CanonicalSymbol returns the uppercased chain symbol, falling back to the
// config section name supplied by the caller when Symbol is unset.
func (c ChainConfig) CanonicalSymbol(name string) string {
	if c.Symbol != "" {
		return common.CanonicalSymbol(c.Symbol)
	}
	return common.CanonicalSymbol(name)
}

// RepositoryConfig configures the deposit store and address cache.
type RepositoryConfig struct {
	MemoryDB      bool   `toml:"memory_db"`
	PostgresqlURL string `toml:"postgresql_url"`
	LeveldbPath   string `toml:"leveldb_path"`
	// KVBackend selects the address cache's durable engine: "badger" (the
	// default) or "leveldb". Not named in spec.md's config table, which
	// only specifies the badger/leveldb-capable path; both backends
	// satisfy the four-operation contract of spec.md §9.
	KVBackend string `toml:"kv_backend"`
}

// NotificationConfig configures the outbound deposit-event queue.
type NotificationConfig struct {
	SqsQueueURL string `toml:"sqs_queue_url"`
	AwsRegion   string `toml:"aws_region"`
}

// CustomerSyncConfig configures the inbound address-event consumer.
type CustomerSyncConfig struct {
	SqsQueueURL       string `toml:"sqs_queue_url"`
	BatchSize         int    `toml:"batch_size"`
	FlushIntervalSecs int    `toml:"flush_interval_secs"`
	CacheFilePath     string `toml:"cache_file_path"`
}

// FlushInterval returns the configured flush interval as a duration.
func (c CustomerSyncConfig) FlushInterval() time.Duration {
	if c.FlushIntervalSecs <= 0 {
		return DefaultFlushInterval
	}
	return time.Duration(c.FlushIntervalSecs) * time.Second
}

// ConfirmationCheckerConfig configures the confirmation reconciler.
type ConfirmationCheckerConfig struct {
	Enabled           bool `toml:"enabled"`
	CheckIntervalSecs int  `toml:"check_interval_secs"`
}

// CheckInterval returns the configured reconciler tick interval.
func (c ConfirmationCheckerConfig) CheckInterval() time.Duration {
	if c.CheckIntervalSecs <= 0 {
		return DefaultCheckInterval
	}
	return time.Duration(c.CheckIntervalSecs) * time.Second
}

// Config is the root document: blockchain.<chain> plus the four
// fixed sections from spec.md §6.1.
type Config struct {
	Blockchain          map[string]ChainConfig    `toml:"blockchain"`
	Repository          RepositoryConfig          `toml:"repository"`
	Notification        NotificationConfig        `toml:"notification"`
	CustomerSync        CustomerSyncConfig        `toml:"customer_sync"`
	ConfirmationChecker ConfirmationCheckerConfig `toml:"confirmation_checker"`
}

// Load reads and decodes the TOML file at path, then applies APP_-prefixed
// environment overrides (see env.go).
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.Wrap(common.KindInitialization, "config.Load", err)
	}
	defer f.Close()

	cfg := Default()
	if err := tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg); err != nil {
		if _, ok := err.(*toml.LineError); ok {
			err = errors.New(path + ", " + err.Error())
		}
		return nil, common.Wrap(common.KindInitialization, "config.Load", err)
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, common.Wrap(common.KindInitialization, "config.Load", err)
	}
	return cfg, nil
}
