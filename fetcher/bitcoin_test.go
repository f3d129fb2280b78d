package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ground-x/xscanner/chain"
)

func TestBitcoinFetcher_DecodesOutputsWithAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"height": 500,
			"tx": [
				{"hash": "h1", "vout": [{"addr": "bc1qaaa", "value": "100000000"}, {"addr": null, "value": "1"}]}
			]
		}`))
	}))
	defer srv.Close()

	f := newBitcoinFetcher(chain.Config{Endpoint: srv.URL}, "BTC")
	block, err := f.Fetch(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), block.Height)
	require.Len(t, block.Candidates, 1)
	assert.Equal(t, "bc1qaaa", block.Candidates[0].ToAddress)
	require.NotNil(t, block.Candidates[0].AmountDecimal)
	assert.Equal(t, "1.0", *block.Candidates[0].AmountDecimal)
}

func TestBitcoinFetcher_NotYetProduced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"height": null}`))
	}))
	defer srv.Close()

	f := newBitcoinFetcher(chain.Config{Endpoint: srv.URL}, "BTC")
	_, err := f.Fetch(context.Background(), 1)
	require.Error(t, err)
}
