// Package analyzer implements the single-consumer Analyzer of spec.md §4.5:
// it drains the block channel, probes the address cache for every
// candidate transfer, and drives the two-stage deposit lifecycle
// (detection, then confirmation) against the deposit store.
package analyzer

import (
	"context"

	"github.com/ground-x/xscanner/cache"
	"github.com/ground-x/xscanner/chain"
	"github.com/ground-x/xscanner/common"
	"github.com/ground-x/xscanner/config"
	xlog "github.com/ground-x/xscanner/log"
	"github.com/ground-x/xscanner/metrics"
	"github.com/ground-x/xscanner/notify"
	"github.com/ground-x/xscanner/store"
)

var logger = xlog.NewModuleLogger("analyzer")

// Analyzer is the sole consumer of the block channel (spec.md §4.2): a
// single goroutine, so no locking is needed around the store/cache
// read-then-write sequences below.
type Analyzer struct {
	cache cache.Cache
	store store.Store
	pub   notify.Publisher

	// requiredConfirmations maps a canonical chain symbol to its configured
	// confirmation depth; a symbol absent from the map uses
	// config.DefaultRequiredConfirmations (spec.md §4.5 step 2).
	requiredConfirmations map[string]uint64

	log *xlog.Logger
}

// New builds an Analyzer. requiredConfirmations should be keyed by
// canonical (uppercase) chain symbol; New canonicalizes defensively.
func New(c cache.Cache, s store.Store, pub notify.Publisher, requiredConfirmations map[string]uint64) *Analyzer {
	norm := make(map[string]uint64, len(requiredConfirmations))
	for symbol, v := range requiredConfirmations {
		norm[common.CanonicalSymbol(symbol)] = v
	}
	return &Analyzer{
		cache:                 c,
		store:                 s,
		pub:                   pub,
		requiredConfirmations: norm,
		log:                   logger,
	}
}

func (a *Analyzer) requiredConfirmationsFor(symbol string) uint64 {
	if v, ok := a.requiredConfirmations[common.CanonicalSymbol(symbol)]; ok && v > 0 {
		return v
	}
	return config.DefaultRequiredConfirmations
}

// Run consumes in until it is closed by the supervisor, processing blocks
// strictly in the order they arrive (spec.md §4.5's ordering guarantee).
// It never returns a non-nil error on its own: every per-candidate and
// per-block failure is logged and absorbed per the Failure semantics of
// spec.md §4.5, so the chain keeps making progress.
func (a *Analyzer) Run(ctx context.Context, in <-chan chain.BlockData) error {
	for block := range in {
		a.processBlock(ctx, block)
	}
	a.log.Info("block channel closed, analyzer exiting")
	return nil
}

func (a *Analyzer) processBlock(ctx context.Context, block chain.BlockData) {
	required := a.requiredConfirmationsFor(block.ChainSymbol)

	for _, cand := range block.Candidates {
		a.processCandidate(ctx, block, cand, required)
	}

	if err := a.store.SetLastProcessed(ctx, block.ChainSymbol, block.Height); err != nil {
		a.log.Warn("advance last_processed failed, will replay from last persisted height on restart",
			"chain", block.ChainSymbol, "height", block.Height, "err", err)
		return
	}
	metrics.BlockProcessed(block.ChainSymbol)
}

func (a *Analyzer) processCandidate(ctx context.Context, block chain.BlockData, cand chain.CandidateTransfer, required uint64) {
	meta, err := a.cache.GetMetadata(ctx, block.ChainSymbol, cand.ToAddress)
	if err != nil {
		a.log.Warn("address cache lookup failed, treating as miss",
			"chain", block.ChainSymbol, "address", cand.ToAddress, "err", err)
		metrics.CacheError()
		return
	}
	if meta == nil {
		metrics.CacheMiss()
		return
	}
	metrics.CacheHit()
	metrics.CandidateMatched(block.ChainSymbol)

	exists, err := a.store.DepositExists(ctx, block.ChainSymbol, cand.TxHash)
	if err != nil {
		a.log.Warn("deposit existence check failed, skipping candidate",
			"chain", block.ChainSymbol, "tx_hash", cand.TxHash, "err", err)
		return
	}

	if !exists {
		a.detect(ctx, block, cand, meta)
		return
	}
	a.checkConfirmation(ctx, block, cand, meta, required)
}

// detect saves a freshly seen deposit and publishes DepositDetected. Per
// spec.md §4.5 step 5, this branch only fires on a transfer's first
// sighting, so confirmations is always 1: deposit_block == block.height.
func (a *Analyzer) detect(ctx context.Context, block chain.BlockData, cand chain.CandidateTransfer, meta *cache.Metadata) {
	in := store.DepositInput{
		Address:       cand.ToAddress,
		WalletID:      meta.WalletID,
		AccountID:     meta.AccountID,
		Chain:         block.ChainSymbol,
		TxHash:        cand.TxHash,
		BlockNumber:   block.Height,
		AmountRaw:     cand.AmountRaw,
		AmountDecimal: cand.AmountDecimal,
	}
	if err := a.store.SaveDeposit(ctx, in); err != nil {
		a.log.Warn("save deposit failed, will retry on next matching block",
			"chain", block.ChainSymbol, "tx_hash", cand.TxHash, "err", err)
		return
	}
	metrics.DepositDetected(block.ChainSymbol)

	evt := notify.DepositEvent{
		Event:         notify.EventDepositDetected,
		Address:       cand.ToAddress,
		WalletID:      meta.WalletID,
		AccountID:     meta.AccountID,
		Chain:         block.ChainSymbol,
		TxHash:        cand.TxHash,
		Amount:        cand.AmountRaw,
		BlockNumber:   block.Height,
		Confirmations: 1,
	}
	if err := a.pub.Publish(ctx, evt); err != nil {
		a.log.Warn("detection event publish failed, deposit remains pending with no event sent",
			"chain", block.ChainSymbol, "tx_hash", cand.TxHash, "err", err)
	}
}

// checkConfirmation recomputes confirmations against the deposit's
// original block and, once the threshold is met, atomically flips
// confirmed and publishes DepositConfirmed (spec.md §4.5 step 5).
func (a *Analyzer) checkConfirmation(ctx context.Context, block chain.BlockData, cand chain.CandidateTransfer, meta *cache.Metadata, required uint64) {
	confirmed, err := a.store.IsDepositConfirmed(ctx, cand.TxHash)
	if err != nil {
		a.log.Warn("confirmed-state check failed, skipping candidate",
			"chain", block.ChainSymbol, "tx_hash", cand.TxHash, "err", err)
		return
	}
	if confirmed {
		return
	}

	depositBlock, ok, err := a.store.GetDepositBlockNumber(ctx, block.ChainSymbol, cand.TxHash)
	if err != nil {
		a.log.Warn("deposit block lookup failed, skipping candidate",
			"chain", block.ChainSymbol, "tx_hash", cand.TxHash, "err", err)
		return
	}
	if !ok {
		// DepositExists just reported true; a concurrent delete is not
		// possible with a single-consumer analyzer, so this would be a
		// logic inconsistency rather than a race.
		a.log.Error("deposit existence and block lookup disagree",
			"chain", block.ChainSymbol, "tx_hash", cand.TxHash, "kind", common.KindLogic.String())
		return
	}
	if block.Height < depositBlock {
		return
	}

	confirmations := block.Height - depositBlock + 1
	if confirmations < required {
		return
	}

	if err := a.store.MarkConfirmed(ctx, cand.TxHash); err != nil {
		a.log.Warn("mark-confirmed failed, will retry on next matching block",
			"chain", block.ChainSymbol, "tx_hash", cand.TxHash, "err", err)
		return
	}
	metrics.DepositConfirmed(block.ChainSymbol)

	evt := notify.DepositEvent{
		Event:         notify.EventDepositConfirmed,
		Address:       cand.ToAddress,
		WalletID:      meta.WalletID,
		AccountID:     meta.AccountID,
		Chain:         block.ChainSymbol,
		TxHash:        cand.TxHash,
		Amount:        cand.AmountRaw,
		BlockNumber:   depositBlock,
		Confirmations: confirmations,
	}
	if err := a.pub.Publish(ctx, evt); err != nil {
		a.log.Warn("confirmation event publish failed",
			"chain", block.ChainSymbol, "tx_hash", cand.TxHash, "err", err)
	}
}
