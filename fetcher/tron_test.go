package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ground-x/xscanner/chain"
	"github.com/ground-x/xscanner/common"
)

func TestTronFetcher_OnlyTransferContractsBecomeCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"blockHeader": {"rawData": {"number": 77}},
			"transactions": [
				{"txID": "t1", "raw_data": {"contract": [{"type": "TransferContract", "parameter": {"value": {"to_address": "TAddr1", "amount": 1000000}}}]}},
				{"txID": "t2", "raw_data": {"contract": [{"type": "TriggerSmartContract", "parameter": {"value": {"to_address": "TAddr2", "amount": 5}}}]}},
				{"txID": "t3", "raw_data": {"contract": []}}
			]
		}`))
	}))
	defer srv.Close()

	f := newTronFetcher(chain.Config{Endpoint: srv.URL}, "TRON")
	block, err := f.Fetch(context.Background(), 77)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), block.Height)
	require.Len(t, block.Candidates, 1)
	assert.Equal(t, "TAddr1", block.Candidates[0].ToAddress)
	assert.Equal(t, "t1", block.Candidates[0].TxHash)
	require.NotNil(t, block.Candidates[0].AmountDecimal)
	assert.Equal(t, "1.0", *block.Candidates[0].AmountDecimal)
}

func TestTronFetcher_MissingBlockHeaderIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	f := newTronFetcher(chain.Config{Endpoint: srv.URL}, "TRON")
	_, err := f.Fetch(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, common.KindTransient, common.KindOf(err))
}
