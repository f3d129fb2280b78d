package fetcher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ground-x/xscanner/chain"
	"github.com/ground-x/xscanner/common"
)

// iconFetcher decodes Icon via a block-by-height REST endpoint, per
// spec.md §4.1: integer height, one candidate per tx in
// confirmed_transaction_list that has a non-empty `to`.
type iconFetcher struct {
	symbol string
	url    string
	http   *httpClient
}

func newIconFetcher(cfg chain.Config, symbol string) Fetcher {
	return &iconFetcher{symbol: symbol, url: cfg.Endpoint, http: newHTTPClient(cfg.PollInterval)}
}

func (f *iconFetcher) ChainSymbol() string { return f.symbol }

type iconBlock struct {
	Height                   *int64 `json:"height"`
	ConfirmedTransactionList []iconTx `json:"confirmed_transaction_list"`
}

type iconTx struct {
	To     string `json:"to"`
	TxHash string `json:"tx_hash"`
	Value  string `json:"value"`
}

func (f *iconFetcher) Fetch(ctx context.Context, height uint64) (*chain.BlockData, error) {
	url := fmt.Sprintf("%s/block?height=%d", f.url, height)
	body, err := f.http.getJSON(ctx, url)
	if err != nil {
		return nil, err
	}

	var b iconBlock
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, common.Wrap(common.KindDecode, "iconFetcher.Fetch", err)
	}
	if b.Height == nil {
		return nil, common.Wrap(common.KindTransient, "iconFetcher.Fetch", fmt.Errorf("block %d not yet produced", height))
	}

	var candidates []chain.CandidateTransfer
	for _, tx := range b.ConfirmedTransactionList {
		if tx.To == "" {
			continue
		}
		ct := chain.CandidateTransfer{
			ToAddress: tx.To,
			TxHash:    tx.TxHash,
			AmountRaw: tx.Value,
		}
		if dec, ok := chain.DecimalFromHex(tx.Value, chain.DivisorICX); ok {
			ct.AmountDecimal = &dec
		} else if dec, ok := chain.DecimalFromInt(tx.Value, chain.DivisorICX); ok {
			ct.AmountDecimal = &dec
		}
		candidates = append(candidates, ct)
	}

	return &chain.BlockData{ChainSymbol: f.symbol, Height: uint64(*b.Height), Candidates: candidates}, nil
}
