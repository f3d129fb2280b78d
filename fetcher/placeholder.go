package fetcher

import (
	"context"

	"github.com/ground-x/xscanner/chain"
)

// placeholderFetcher covers Terra, Tezos, GXChain, and Wayki. Per spec.md
// §4.1 and the design notes in §9 ("known gaps, not bugs"), these chains
// advance their height on every poll without ever producing a candidate
// transfer, since their decode adapters are not yet implemented upstream.
type placeholderFetcher struct {
	symbol string
}

func newPlaceholderFetcher(cfg chain.Config, symbol string) Fetcher {
	return &placeholderFetcher{symbol: symbol}
}

func (f *placeholderFetcher) ChainSymbol() string { return f.symbol }

func (f *placeholderFetcher) Fetch(ctx context.Context, height uint64) (*chain.BlockData, error) {
	return &chain.BlockData{ChainSymbol: f.symbol, Height: height, Candidates: nil}, nil
}
