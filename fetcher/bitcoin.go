package fetcher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ground-x/xscanner/chain"
	"github.com/ground-x/xscanner/common"
)

// bitcoinFetcher decodes Bitcoin-like chains via a block-by-height REST
// endpoint, per spec.md §4.1: integer height, one candidate per output
// with a non-null address.
type bitcoinFetcher struct {
	symbol string
	url    string
	http   *httpClient
}

func newBitcoinFetcher(cfg chain.Config, symbol string) Fetcher {
	return &bitcoinFetcher{symbol: symbol, url: cfg.Endpoint, http: newHTTPClient(cfg.PollInterval)}
}

func (f *bitcoinFetcher) ChainSymbol() string { return f.symbol }

type btcBlock struct {
	Height *int64  `json:"height"`
	Txs    []btcTx `json:"tx"`
}

type btcTx struct {
	Hash    string     `json:"hash"`
	Outputs []btcVout  `json:"vout"`
}

type btcVout struct {
	Addr  *string `json:"addr"`
	Value string  `json:"value"`
}

func (f *bitcoinFetcher) Fetch(ctx context.Context, height uint64) (*chain.BlockData, error) {
	url := fmt.Sprintf("%s/block/height/%d", f.url, height)
	body, err := f.http.getJSON(ctx, url)
	if err != nil {
		return nil, err
	}

	var b btcBlock
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, common.Wrap(common.KindDecode, "bitcoinFetcher.Fetch", err)
	}
	if b.Height == nil {
		return nil, common.Wrap(common.KindTransient, "bitcoinFetcher.Fetch", fmt.Errorf("block %d not yet produced", height))
	}

	var candidates []chain.CandidateTransfer
	for _, tx := range b.Txs {
		for _, out := range tx.Outputs {
			if out.Addr == nil || *out.Addr == "" {
				continue
			}
			ct := chain.CandidateTransfer{
				ToAddress: *out.Addr,
				TxHash:    tx.Hash,
				AmountRaw: out.Value,
			}
			if dec, ok := chain.DecimalFromInt(ct.AmountRaw, chain.DivisorBTC); ok {
				ct.AmountDecimal = &dec
			}
			candidates = append(candidates, ct)
		}
	}

	return &chain.BlockData{ChainSymbol: f.symbol, Height: uint64(*b.Height), Candidates: candidates}, nil
}
