package fetcher

import (
	"context"
	"time"

	"github.com/ground-x/xscanner/chain"
	"github.com/ground-x/xscanner/common"
	xlog "github.com/ground-x/xscanner/log"
	"github.com/ground-x/xscanner/metrics"
)

var logger = xlog.NewModuleLogger("fetcher")

// StartHeightStore is the slice of the deposit store a Runner needs to
// resolve its starting height (spec.md §4.1, §4.6).
type StartHeightStore interface {
	GetLastProcessed(ctx context.Context, chainSymbol string) (uint64, error)
	InitLastProcessed(ctx context.Context, chainSymbol string, start uint64) error
}

// Runner drives a single Fetcher's polling loop: the ChainFetcher
// component of spec.md §4.1.
type Runner struct {
	fetcher Fetcher
	cfg     chain.Config
	store   StartHeightStore
	out     chan<- chain.BlockData
	meter   *metrics.FetchMeter

	log *xlog.Logger
}

// NewRunner builds a Runner for cfg, wiring a freshly constructed Fetcher
// of the appropriate chain family.
func NewRunner(cfg chain.Config, store StartHeightStore, out chan<- chain.BlockData) *Runner {
	symbol := cfg.CanonicalSymbol()
	return &Runner{
		fetcher: New(cfg),
		cfg:     cfg,
		store:   store,
		out:     out,
		meter:   metrics.NewFetchMeter(symbol),
		log:     logger.With("chain", symbol),
	}
}

// Run resolves the starting height and polls until ctx is cancelled.
// Per spec.md §4.1: on success the block is sent (blocking if the channel
// is full — the system's backpressure point) and next_block advances only
// after the send completes; on any failure next_block does not advance
// and the loop retries after an extra poll_interval/2 sleep.
func (r *Runner) Run(ctx context.Context) error {
	symbol := r.cfg.CanonicalSymbol()

	if err := r.store.InitLastProcessed(ctx, symbol, r.cfg.StartBlock); err != nil {
		return common.Wrap(common.KindInitialization, "Runner.Run", err)
	}
	last, err := r.store.GetLastProcessed(ctx, symbol)
	if err != nil {
		return common.Wrap(common.KindInitialization, "Runner.Run", err)
	}

	next := last + 1
	if r.cfg.StartBlock > next {
		next = r.cfg.StartBlock
	}

	interval := r.cfg.PollInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	retryDelay := interval / 2

	r.log.Info("fetcher starting", "next_block", next, "interval", interval)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("fetcher stopping", "next_block", next)
			return nil
		case <-timer.C:
		}

		block, err := r.fetcher.Fetch(ctx, next)
		if err != nil {
			r.log.Warn("fetch failed, will retry without advancing", "height", next, "kind", common.KindOf(err).String(), "err", err)
			timer.Reset(interval + retryDelay)
			continue
		}

		select {
		case r.out <- *block:
			next++
			r.meter.Mark(1)
			timer.Reset(interval)
		case <-ctx.Done():
			r.log.Info("fetcher stopping mid-send", "next_block", next)
			return nil
		}
	}
}
