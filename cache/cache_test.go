package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestMemoryCache_PutAndIsMonitored_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	require.NoError(t, c.Put(ctx, "ETH", "0xABC", Metadata{WalletID: "w1"}))

	ok, err := c.IsMonitored(ctx, "eth", "0xabc")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache_Miss(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	ok, err := c.IsMonitored(ctx, "eth", "0xdoesnotexist")
	require.NoError(t, err)
	assert.False(t, ok)

	meta, err := c.GetMetadata(ctx, "eth", "0xdoesnotexist")
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestMemoryCache_BatchPutAndDump(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	require.NoError(t, c.BatchPut(ctx, []Entry{
		{Chain: "ETH", Address: "0xabc", Metadata: Metadata{WalletID: "w1"}},
		{Chain: "BTC", Address: "bc1q", Metadata: Metadata{WalletID: "w2", AccountID: strPtr("a2")}},
	}))

	entries, err := c.Dump(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	require.NoError(t, c.Put(ctx, "ETH", "0xabc", Metadata{WalletID: "w1"}))
	require.NoError(t, c.Delete(ctx, "ETH", "0xabc"))

	ok, err := c.IsMonitored(ctx, "ETH", "0xabc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHotCache_ReadsThroughOnMissThenCaches(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryCache()
	hot := WithHotLayer(backend)
	defer hot.Close()

	require.NoError(t, backend.Put(ctx, "ETH", "0xabc", Metadata{WalletID: "w1"}))

	ok, err := hot.IsMonitored(ctx, "ETH", "0xabc")
	require.NoError(t, err)
	assert.True(t, ok)

	meta, err := hot.GetMetadata(ctx, "ETH", "0xabc")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "w1", meta.WalletID)
}

func TestHotCache_TombstonesMiss(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryCache()
	hot := WithHotLayer(backend)
	defer hot.Close()

	ok, err := hot.IsMonitored(ctx, "ETH", "0xnotthere")
	require.NoError(t, err)
	assert.False(t, ok)

	// Writing directly to the backend after the miss was cached must not
	// retroactively appear until the hot layer is told about it.
	require.NoError(t, backend.Put(ctx, "ETH", "0xnotthere", Metadata{WalletID: "late"}))
	ok, err = hot.IsMonitored(ctx, "ETH", "0xnotthere")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHotCache_PutIsVisibleImmediately(t *testing.T) {
	ctx := context.Background()
	hot := WithHotLayer(NewMemoryCache())
	defer hot.Close()

	require.NoError(t, hot.Put(ctx, "ETH", "0xabc", Metadata{WalletID: "w1"}))
	ok, err := hot.IsMonitored(ctx, "ETH", "0xabc")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSplitKey(t *testing.T) {
	chain, address := splitKey("eth:0xabc")
	assert.Equal(t, "eth", chain)
	assert.Equal(t, "0xabc", address)
}
