// Package chain holds the chain-agnostic value types the fetchers produce
// and the analyzer consumes: the tagged BlockData variant, candidate
// transfers, and per-chain configuration (spec.md §3, §4.1).
package chain

import (
	"time"

	"github.com/ground-x/xscanner/common"
)

// Config is the immutable per-chain configuration resolved from the TOML
// document (spec.md's ChainConfig entity).
type Config struct {
	Name                  string
	Symbol                string
	Endpoint              string
	StartBlock            uint64
	PollInterval          time.Duration
	RequiredConfirmations uint64
}

// CanonicalSymbol is the uppercased symbol used as the chain key in the
// store and in outbound events.
func (c Config) CanonicalSymbol() string {
	if c.Symbol != "" {
		return common.CanonicalSymbol(c.Symbol)
	}
	return common.CanonicalSymbol(c.Name)
}

// CandidateTransfer is a (to, tx_hash, amount) triple extracted from a
// block before the address-cache probe (spec.md glossary).
type CandidateTransfer struct {
	ToAddress string
	// TxHash uniquely identifies the transaction carrying this transfer.
	TxHash string
	// AmountRaw preserves the chain-native minor-unit representation
	// exactly as decoded: a "0x"-prefixed hex string for EVM-like chains,
	// the endpoint's own value string (hex or decimal) for Icon, and a
	// plain decimal integer string for the rest (spec.md §4.1, §6.3).
	AmountRaw string
	// AmountDecimal is a best-effort fixed-precision conversion of
	// AmountRaw to whole-coin units; nil when the conversion could not be
	// performed (spec.md §4.1: "conversion failures are non-fatal").
	AmountDecimal *string
}

// BlockData is the tagged-union result of a fetch: a chain symbol, a
// height, and the candidate transfers extracted from that block's
// transactions (spec.md §3).
type BlockData struct {
	ChainSymbol string
	Height      uint64
	Candidates  []CandidateTransfer
}
