package fetcher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ground-x/xscanner/chain"
	"github.com/ground-x/xscanner/common"
)

// tronFetcher decodes Tron via the wallet/getblockbynum REST endpoint, per
// spec.md §4.1: height at blockHeader.rawData.number, one candidate per tx
// whose first contract is a TransferContract.
type tronFetcher struct {
	symbol string
	url    string
	http   *httpClient
}

func newTronFetcher(cfg chain.Config, symbol string) Fetcher {
	return &tronFetcher{symbol: symbol, url: cfg.Endpoint, http: newHTTPClient(cfg.PollInterval)}
}

func (f *tronFetcher) ChainSymbol() string { return f.symbol }

type tronBlock struct {
	BlockHeader *tronBlockHeader `json:"blockHeader"`
	Transactions []tronTx        `json:"transactions"`
}

type tronBlockHeader struct {
	RawData struct {
		Number int64 `json:"number"`
	} `json:"rawData"`
}

type tronTx struct {
	TxID     string `json:"txID"`
	RawData struct {
		Contract []tronContract `json:"contract"`
	} `json:"raw_data"`
}

type tronContract struct {
	Type      string `json:"type"`
	Parameter struct {
		Value struct {
			ToAddress string `json:"to_address"`
			Amount    int64  `json:"amount"`
		} `json:"value"`
	} `json:"parameter"`
}

func (f *tronFetcher) Fetch(ctx context.Context, height uint64) (*chain.BlockData, error) {
	url := fmt.Sprintf("%s/wallet/getblockbynum?num=%d", f.url, height)
	body, err := f.http.getJSON(ctx, url)
	if err != nil {
		return nil, err
	}

	var b tronBlock
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, common.Wrap(common.KindDecode, "tronFetcher.Fetch", err)
	}
	if b.BlockHeader == nil {
		return nil, common.Wrap(common.KindTransient, "tronFetcher.Fetch", fmt.Errorf("block %d not yet produced", height))
	}

	var candidates []chain.CandidateTransfer
	for _, tx := range b.Transactions {
		if len(tx.RawData.Contract) == 0 {
			continue
		}
		c := tx.RawData.Contract[0]
		if c.Type != "TransferContract" {
			continue
		}
		amount := fmt.Sprintf("%d", c.Parameter.Value.Amount)
		ct := chain.CandidateTransfer{
			ToAddress: c.Parameter.Value.ToAddress,
			TxHash:    tx.TxID,
			AmountRaw: amount,
		}
		if dec, ok := chain.DecimalFromInt(amount, chain.DivisorTRX); ok {
			ct.AmountDecimal = &dec
		}
		candidates = append(candidates, ct)
	}

	return &chain.BlockData{ChainSymbol: f.symbol, Height: uint64(b.BlockHeader.RawData.Number), Candidates: candidates}, nil
}
