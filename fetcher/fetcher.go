// Package fetcher implements the ChainFetcher component of spec.md §4.1:
// per-chain adapters that poll a configured endpoint and decode its native
// block representation into the chain-agnostic chain.BlockData variant.
package fetcher

import (
	"context"

	"github.com/ground-x/xscanner/chain"
)

// Fetcher is the two-operation capability set every chain adapter
// implements (spec.md §9 design notes: "fetchers are polymorphic only over
// fetch(height) and chain_name").
type Fetcher interface {
	// ChainSymbol returns the canonical uppercased chain symbol.
	ChainSymbol() string
	// Fetch retrieves and decodes the block at height. A non-nil error
	// covers network failure, decode failure, and "block not yet
	// produced" uniformly — the caller (runner.go) never advances on
	// error regardless of cause.
	Fetch(ctx context.Context, height uint64) (*chain.BlockData, error)
}

// Family identifies which decode family a chain belongs to (spec.md
// §4.1's decode table).
type Family int

const (
	FamilyEVM Family = iota
	FamilyBitcoin
	FamilyTron
	FamilyIcon
	FamilyAlgorand
	FamilyPlaceholder
)

// familyBySymbol is the fixed mapping from canonical chain symbol to
// decode family named in spec.md §4.1. Unrecognized symbols fall back to
// FamilyPlaceholder (empty candidate list), matching the treatment of
// Terra/Tezos/GXChain/Wayki.
var familyBySymbol = map[string]Family{
	"ETH":     FamilyEVM,
	"SEPOLIA": FamilyEVM,
	"AION":    FamilyEVM,
	"QUARK":   FamilyEVM,
	"THETA":   FamilyEVM,
	"BTC":     FamilyBitcoin,
	"TRON":    FamilyTron,
	"TRX":     FamilyTron,
	"ICX":     FamilyIcon,
	"ICON":    FamilyIcon,
	"ALGO":    FamilyAlgorand,
	"ALGORAND": FamilyAlgorand,
	"TERRA":   FamilyPlaceholder,
	"TEZOS":   FamilyPlaceholder,
	"GXC":     FamilyPlaceholder,
	"GXCHAIN": FamilyPlaceholder,
	"WAYKI":   FamilyPlaceholder,
}

// FamilyOf resolves the decode family for a canonical chain symbol.
func FamilyOf(symbol string) Family {
	if f, ok := familyBySymbol[symbol]; ok {
		return f
	}
	return FamilyPlaceholder
}

// New builds the Fetcher implementation appropriate for cfg's chain
// family.
func New(cfg chain.Config) Fetcher {
	symbol := cfg.CanonicalSymbol()
	switch FamilyOf(symbol) {
	case FamilyEVM:
		return newEVMFetcher(cfg, symbol)
	case FamilyBitcoin:
		return newBitcoinFetcher(cfg, symbol)
	case FamilyTron:
		return newTronFetcher(cfg, symbol)
	case FamilyIcon:
		return newIconFetcher(cfg, symbol)
	case FamilyAlgorand:
		return newAlgorandFetcher(cfg, symbol)
	default:
		return newPlaceholderFetcher(cfg, symbol)
	}
}
