// Package store implements the Deposit Store of spec.md §4.6: the
// transactional record of per-chain last-processed heights and per-tx
// deposit records, exactly-once per (chain, tx_hash).
package store

import (
	"context"
	"time"
)

// DepositInput is the data saved on first detection (spec.md §4.6's
// save_deposit).
type DepositInput struct {
	Address       string
	WalletID      string
	AccountID     *string
	Chain         string
	TxHash        string
	BlockNumber   uint64
	AmountRaw     string
	AmountDecimal *string
}

// DepositRecord is the persisted row backing a deposit, mirroring
// spec.md §3's DepositRecord entity.
type DepositRecord struct {
	ID            string
	Address       string
	WalletID      string
	AccountID     *string
	ChainSymbol   string
	TxHash        string
	BlockNumber   uint64
	AmountRaw     string
	AmountDecimal *string
	Confirmed     bool
	CreatedAt     time.Time
}

// PendingDeposit is a row returned by GetPendingDeposits: every field the
// confirmation reconciler needs, per spec.md §4.7, including the payload
// fields it republishes on promotion.
type PendingDeposit struct {
	Address     string
	WalletID    string
	AccountID   *string
	ChainSymbol string
	TxHash      string
	BlockNumber uint64
	AmountRaw   string
}

// Store is the deposit store's capability set (spec.md §4.6). Two
// implementations exist: gormStore (durable, PostgreSQL) and memoryStore
// (testing), selected at construction per the design note in spec.md §9.
type Store interface {
	GetLastProcessed(ctx context.Context, chainSymbol string) (uint64, error)
	SetLastProcessed(ctx context.Context, chainSymbol string, height uint64) error
	InitLastProcessed(ctx context.Context, chainSymbol string, start uint64) error

	SaveDeposit(ctx context.Context, in DepositInput) error
	DepositExists(ctx context.Context, chainSymbol, txHash string) (bool, error)
	// GetDepositBlockNumber returns the block_number recorded when the
	// deposit (chainSymbol, txHash) was first detected, for the
	// confirmations recomputation of spec.md §4.5 step 5. The bool is
	// false if no such deposit exists.
	GetDepositBlockNumber(ctx context.Context, chainSymbol, txHash string) (uint64, bool, error)
	IsDepositConfirmed(ctx context.Context, txHash string) (bool, error)
	MarkConfirmed(ctx context.Context, txHash string) error
	GetPendingDeposits(ctx context.Context) ([]PendingDeposit, error)

	Close() error
}
