// Package supervisor wires the process together: one Runner per configured
// chain, the analyzer, the address-sync consumer, the confirmation
// reconciler, and the metrics endpoint, and manages their shared shutdown
// per spec.md §5. It follows the teacher's cmd/utils/cmd.go StartNode
// convention of a single signal-triggered shutdown rather than a generic
// task-group library.
package supervisor

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ground-x/xscanner/analyzer"
	"github.com/ground-x/xscanner/cache"
	"github.com/ground-x/xscanner/chain"
	"github.com/ground-x/xscanner/common"
	"github.com/ground-x/xscanner/config"
	"github.com/ground-x/xscanner/confirm"
	"github.com/ground-x/xscanner/fetcher"
	xlog "github.com/ground-x/xscanner/log"
	"github.com/ground-x/xscanner/metrics"
	"github.com/ground-x/xscanner/notify"
	"github.com/ground-x/xscanner/store"
	addresssync "github.com/ground-x/xscanner/sync"
)

var logger = xlog.NewModuleLogger("supervisor")

// MetricsAddr is the listen address for the Prometheus /metrics endpoint.
// Left as a package variable rather than threaded through Config because
// spec.md does not name an operator-facing setting for it; operators that
// need a non-default port can override via the usual -metrics-addr flag
// handled in cmd/xscanner.
var MetricsAddr = ":9090"

// Supervisor owns every long-lived task in the process (spec.md §5).
type Supervisor struct {
	cfg   *config.Config
	cache cache.Cache
	store store.Store
}

// New builds a Supervisor from a loaded Config, opening the address cache
// and deposit store.
func New(cfg *config.Config) (*Supervisor, error) {
	c, err := cache.New(cfg.Repository.KVBackend, cfg.Repository.LeveldbPath)
	if err != nil {
		return nil, common.Wrap(common.KindInitialization, "supervisor.New", err)
	}

	s, err := store.New(cfg.Repository.MemoryDB, cfg.Repository.PostgresqlURL)
	if err != nil {
		c.Close()
		return nil, common.Wrap(common.KindInitialization, "supervisor.New", err)
	}

	return &Supervisor{cfg: cfg, cache: c, store: s}, nil
}

// requiredConfirmations returns the canonical-symbol -> required_confirmations
// map derived from the chain sections, for the analyzer and reconciler.
func (sv *Supervisor) requiredConfirmations() map[string]uint64 {
	out := make(map[string]uint64, len(sv.cfg.Blockchain))
	for name, cc := range sv.cfg.Blockchain {
		out[cc.CanonicalSymbol(name)] = cc.RequiredConfirmationsOrDefault()
	}
	return out
}

func (sv *Supervisor) outboundPublisher() (notify.Publisher, error) {
	if sv.cfg.Notification.SqsQueueURL == "" {
		return notify.NoopPublisher{}, nil
	}
	return notify.NewSQSPublisher(sv.cfg.Notification.SqsQueueURL, sv.cfg.Notification.AwsRegion)
}

func (sv *Supervisor) inboundQueue() (addresssync.InboundQueue, error) {
	if sv.cfg.CustomerSync.SqsQueueURL == "" {
		return nil, nil
	}
	return notify.NewQueueClient(sv.cfg.CustomerSync.SqsQueueURL, sv.cfg.Notification.AwsRegion)
}

// Run starts every task and blocks until an OS interrupt/terminate signal
// is received, then shuts down: ctx is cancelled, which stops the
// fetchers, the reconciler, the sync consumer and the metrics endpoint;
// once every fetcher has returned the block channel is closed, and the
// analyzer drains what is left in it and exits.
func (sv *Supervisor) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub, err := sv.outboundPublisher()
	if err != nil {
		return common.Wrap(common.KindInitialization, "Supervisor.Run", err)
	}
	inbound, err := sv.inboundQueue()
	if err != nil {
		return common.Wrap(common.KindInitialization, "Supervisor.Run", err)
	}

	required := sv.requiredConfirmations()

	blocks := make(chan chain.BlockData, config.BlockChannelCapacity)

	var wg sync.WaitGroup
	var fetcherWG sync.WaitGroup

	// One task per configured chain (spec.md §5). These share blocks as
	// producers, so they must all have returned before it is closed.
	for name, cc := range sv.cfg.Blockchain {
		symbol := cc.CanonicalSymbol(name)
		fc := chain.Config{
			Name:                  name,
			Symbol:                symbol,
			Endpoint:              cc.Api,
			StartBlock:            cc.StartBlock,
			PollInterval:          cc.PollInterval(),
			RequiredConfirmations: cc.RequiredConfirmationsOrDefault(),
		}
		runner := fetcher.NewRunner(fc, sv.store, blocks)
		fetcherWG.Add(1)
		go func(symbol string) {
			defer fetcherWG.Done()
			if err := runner.Run(ctx); err != nil {
				logger.Error("fetcher task exited with error", "chain", symbol, "err", err)
			}
		}(symbol)
	}

	// The analyzer is the channel's sole consumer; it exits when the
	// channel is closed, not when ctx is cancelled.
	az := analyzer.New(sv.cache, sv.store, pub, required)
	analyzerDone := make(chan struct{})
	go func() {
		defer close(analyzerDone)
		if err := az.Run(ctx, blocks); err != nil {
			logger.Error("analyzer task exited with error", "err", err)
		}
	}()

	syncConsumer := addresssync.New(sv.cache, inbound, sv.cfg.CustomerSync.BatchSize, sv.cfg.CustomerSync.FlushInterval(), sv.cfg.CustomerSync.CacheFilePath)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := syncConsumer.Run(ctx); err != nil {
			logger.Error("address-sync task exited with error", "err", err)
		}
	}()

	if sv.cfg.ConfirmationChecker.Enabled {
		lookup := func(symbol string) uint64 {
			if v, ok := required[common.CanonicalSymbol(symbol)]; ok && v > 0 {
				return v
			}
			return config.DefaultRequiredConfirmations
		}
		reconciler := confirm.New(sv.store, pub, lookup, sv.cfg.ConfirmationChecker.CheckInterval())
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := reconciler.Run(ctx); err != nil {
				logger.Error("reconciler task exited with error", "err", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := metrics.Serve(ctx, MetricsAddr); err != nil {
			logger.Error("metrics endpoint exited with error", "err", err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)
	<-sigc
	logger.Info("got interrupt, shutting down")
	cancel()

	// Every fetcher (the channel's only producers) must return before the
	// channel is closed, or a send on a closing channel could panic.
	fetcherWG.Wait()
	close(blocks)

	<-analyzerDone
	wg.Wait()

	return sv.store.Close()
}

// Close releases the cache and store without running the task set; used
// by maintenance tooling that only needs the storage layer.
func (sv *Supervisor) Close() error {
	cacheErr := sv.cache.Close()
	storeErr := sv.store.Close()
	if cacheErr != nil {
		return cacheErr
	}
	return storeErr
}

// Cache exposes the opened address cache, for maintenance tooling.
func (sv *Supervisor) Cache() cache.Cache { return sv.cache }

// Store exposes the opened deposit store, for maintenance tooling.
func (sv *Supervisor) Store() store.Store { return sv.store }
