package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ground-x/xscanner/chain"
	"github.com/ground-x/xscanner/common"
)

// evmFetcher decodes EVM-like chains (ETH, Sepolia, AION, QUARK, THETA) via
// a standard eth_getBlockByNumber JSON-RPC call, per spec.md §4.1's EVM-like
// row: hex or decimal height, one candidate per tx with a non-null `to`.
type evmFetcher struct {
	symbol string
	url    string
	http   *httpClient
}

func newEVMFetcher(cfg chain.Config, symbol string) Fetcher {
	return &evmFetcher{symbol: symbol, url: cfg.Endpoint, http: newHTTPClient(cfg.PollInterval)}
}

func (f *evmFetcher) ChainSymbol() string { return f.symbol }

type evmRPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type evmRPCResponse struct {
	Result *evmBlock       `json:"result"`
	Error  *evmRPCErrorObj `json:"error"`
}

type evmRPCErrorObj struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type evmBlock struct {
	Number       string   `json:"number"`
	Height       string   `json:"height"`
	Transactions []evmTx  `json:"transactions"`
}

type evmTx struct {
	To    *string `json:"to"`
	Hash  string  `json:"hash"`
	Value string  `json:"value"`
}

func (f *evmFetcher) Fetch(ctx context.Context, height uint64) (*chain.BlockData, error) {
	req := evmRPCRequest{
		JSONRPC: "2.0",
		Method:  "eth_getBlockByNumber",
		Params:  []interface{}{"0x" + strconv.FormatUint(height, 16), true},
		ID:      1,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, common.Wrap(common.KindDecode, "evmFetcher.Fetch", err)
	}

	respBody, err := f.http.postJSON(ctx, f.url, body)
	if err != nil {
		return nil, err
	}

	var rpcResp evmRPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, common.Wrap(common.KindDecode, "evmFetcher.Fetch", err)
	}
	if rpcResp.Error != nil {
		return nil, common.Wrap(common.KindTransient, "evmFetcher.Fetch", fmt.Errorf("rpc error: %s", rpcResp.Error.Message))
	}
	if rpcResp.Result == nil {
		return nil, common.Wrap(common.KindTransient, "evmFetcher.Fetch", fmt.Errorf("block %d not yet produced", height))
	}

	decodedHeight, err := decodeEVMHeight(rpcResp.Result)
	if err != nil {
		return nil, common.Wrap(common.KindDecode, "evmFetcher.Fetch", err)
	}

	candidates := make([]chain.CandidateTransfer, 0, len(rpcResp.Result.Transactions))
	for _, tx := range rpcResp.Result.Transactions {
		if tx.To == nil || *tx.To == "" {
			continue
		}
		ct := chain.CandidateTransfer{
			ToAddress: *tx.To,
			TxHash:    tx.Hash,
			AmountRaw: normalizeHex(tx.Value),
		}
		if dec, ok := chain.DecimalFromHex(ct.AmountRaw, chain.DivisorEVM); ok {
			ct.AmountDecimal = &dec
		}
		candidates = append(candidates, ct)
	}

	return &chain.BlockData{ChainSymbol: f.symbol, Height: decodedHeight, Candidates: candidates}, nil
}

func decodeEVMHeight(b *evmBlock) (uint64, error) {
	raw := b.Number
	if raw == "" {
		raw = b.Height
	}
	if raw == "" {
		return 0, fmt.Errorf("missing block number/height")
	}
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		return strconv.ParseUint(raw[2:], 16, 64)
	}
	return strconv.ParseUint(raw, 10, 64)
}

func normalizeHex(v string) string {
	if v == "" {
		return "0x0"
	}
	if !strings.HasPrefix(v, "0x") && !strings.HasPrefix(v, "0X") {
		return "0x" + v
	}
	return v
}
