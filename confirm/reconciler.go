// Package confirm implements the Confirmation Reconciler of spec.md §4.7: a
// periodic background pass that promotes pending deposits past their
// required confirmation depth even when no fresh block carrying the same
// tx has arrived.
package confirm

import (
	"context"
	"time"

	"github.com/ground-x/xscanner/common"
	xlog "github.com/ground-x/xscanner/log"
	"github.com/ground-x/xscanner/metrics"
	"github.com/ground-x/xscanner/notify"
	"github.com/ground-x/xscanner/store"
)

var logger = xlog.NewModuleLogger("confirm")

// RequiredConfirmationsFunc resolves a chain symbol's configured
// confirmation depth, mirroring the analyzer's lookup (spec.md §4.5 step
//2, §9 note 5).
type RequiredConfirmationsFunc func(chainSymbol string) uint64

// Reconciler is the periodic promotion loop.
type Reconciler struct {
	store    store.Store
	pub      notify.Publisher
	required RequiredConfirmationsFunc
	interval time.Duration

	log *xlog.Logger
}

// New builds a Reconciler that ticks every interval.
func New(s store.Store, pub notify.Publisher, required RequiredConfirmationsFunc, interval time.Duration) *Reconciler {
	return &Reconciler{store: s, pub: pub, required: required, interval: interval, log: logger}
}

// Run ticks until ctx is cancelled and returns as soon as it is; a tick
// already in progress runs to completion first.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("reconciler stopping")
			return nil
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Reconciler) tick(ctx context.Context) {
	pending, err := r.store.GetPendingDeposits(ctx)
	if err != nil {
		r.log.Warn("fetching pending deposits failed, will retry next tick", "err", err)
		return
	}

	for _, d := range pending {
		r.reconcileOne(ctx, d)
	}
}

func (r *Reconciler) reconcileOne(ctx context.Context, d store.PendingDeposit) {
	current, err := r.store.GetLastProcessed(ctx, d.ChainSymbol)
	if err != nil {
		r.log.Warn("last_processed lookup failed, skipping deposit",
			"chain", d.ChainSymbol, "tx_hash", d.TxHash, "err", err)
		return
	}

	var confirmations uint64
	if current >= d.BlockNumber {
		confirmations = current - d.BlockNumber + 1
	}

	required := r.required(d.ChainSymbol)
	if confirmations < required {
		return
	}

	// is_deposit_confirmed guard: the analyzer may have already promoted
	// this row between GetPendingDeposits and now (spec.md §9's
	// two-stage-lifecycle-vs-reconciler-redundancy note).
	confirmed, err := r.store.IsDepositConfirmed(ctx, d.TxHash)
	if err != nil {
		r.log.Warn("confirmed-state check failed, skipping deposit",
			"chain", d.ChainSymbol, "tx_hash", d.TxHash, "err", err)
		return
	}
	if confirmed {
		return
	}

	if err := r.store.MarkConfirmed(ctx, d.TxHash); err != nil {
		r.log.Warn("mark-confirmed failed, will retry next tick",
			"chain", d.ChainSymbol, "tx_hash", d.TxHash, "err", err)
		return
	}
	metrics.DepositConfirmed(d.ChainSymbol)

	evt := notify.DepositEvent{
		Event:         notify.EventDepositConfirmed,
		Address:       d.Address,
		WalletID:      d.WalletID,
		AccountID:     d.AccountID,
		Chain:         d.ChainSymbol,
		TxHash:        d.TxHash,
		Amount:        d.AmountRaw,
		BlockNumber:   d.BlockNumber,
		Confirmations: confirmations,
	}
	if err := r.pub.Publish(ctx, evt); err != nil {
		r.log.Warn("confirmation event publish failed",
			"chain", d.ChainSymbol, "tx_hash", d.TxHash, "kind", common.KindOf(err).String(), "err", err)
	}
}
