package fetcher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ground-x/xscanner/chain"
	"github.com/ground-x/xscanner/common"
)

// algorandFetcher decodes Algorand via a block-by-round REST endpoint, per
// spec.md §4.1: round as height, one candidate per payment-type tx.
type algorandFetcher struct {
	symbol string
	url    string
	http   *httpClient
}

func newAlgorandFetcher(cfg chain.Config, symbol string) Fetcher {
	return &algorandFetcher{symbol: symbol, url: cfg.Endpoint, http: newHTTPClient(cfg.PollInterval)}
}

func (f *algorandFetcher) ChainSymbol() string { return f.symbol }

type algoBlockEnvelope struct {
	Block *algoBlock `json:"block"`
}

type algoBlock struct {
	Round        *int64   `json:"round"`
	Transactions []algoTx `json:"transactions"`
}

type algoTx struct {
	Type    string      `json:"type"`
	ID      string      `json:"id"`
	Payment *algoPaymentTx `json:"payment-transaction"`
}

type algoPaymentTx struct {
	Receiver string `json:"receiver"`
	Amount   int64  `json:"amount"`
}

func (f *algorandFetcher) Fetch(ctx context.Context, height uint64) (*chain.BlockData, error) {
	url := fmt.Sprintf("%s/v2/blocks/%d", f.url, height)
	body, err := f.http.getJSON(ctx, url)
	if err != nil {
		return nil, err
	}

	var env algoBlockEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, common.Wrap(common.KindDecode, "algorandFetcher.Fetch", err)
	}
	if env.Block == nil || env.Block.Round == nil {
		return nil, common.Wrap(common.KindTransient, "algorandFetcher.Fetch", fmt.Errorf("round %d not yet produced", height))
	}

	var candidates []chain.CandidateTransfer
	for _, tx := range env.Block.Transactions {
		if tx.Type != "pay" || tx.Payment == nil {
			continue
		}
		amount := fmt.Sprintf("%d", tx.Payment.Amount)
		ct := chain.CandidateTransfer{
			ToAddress: tx.Payment.Receiver,
			TxHash:    tx.ID,
			AmountRaw: amount,
		}
		if dec, ok := chain.DecimalFromInt(amount, chain.DivisorALGO); ok {
			ct.AmountDecimal = &dec
		}
		candidates = append(candidates, ct)
	}

	return &chain.BlockData{ChainSymbol: f.symbol, Height: uint64(*env.Block.Round), Candidates: candidates}, nil
}
