package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveDeposit_UniqueConflictIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	in := DepositInput{Address: "0xabc", WalletID: "w1", Chain: "ETH", TxHash: "0xH", BlockNumber: 100, AmountRaw: "0xde0b6b3a7640000"}
	require.NoError(t, s.SaveDeposit(ctx, in))
	require.NoError(t, s.SaveDeposit(ctx, in)) // duplicate: must not error, must not duplicate

	exists, err := s.DepositExists(ctx, "ETH", "0xH")
	require.NoError(t, err)
	assert.True(t, exists)

	pending, err := s.GetPendingDeposits(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestMemoryStore_GetDepositBlockNumber(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	_, ok, err := s.GetDepositBlockNumber(ctx, "ETH", "0xH")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveDeposit(ctx, DepositInput{Chain: "ETH", TxHash: "0xH", BlockNumber: 100}))

	block, ok, err := s.GetDepositBlockNumber(ctx, "ETH", "0xH")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(100), block)
}

func TestMemoryStore_MarkConfirmed_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	require.NoError(t, s.SaveDeposit(ctx, DepositInput{Chain: "ETH", TxHash: "0xH", BlockNumber: 100}))

	confirmed, err := s.IsDepositConfirmed(ctx, "0xH")
	require.NoError(t, err)
	assert.False(t, confirmed)

	require.NoError(t, s.MarkConfirmed(ctx, "0xH"))
	require.NoError(t, s.MarkConfirmed(ctx, "0xH")) // idempotent re-confirm

	confirmed, err = s.IsDepositConfirmed(ctx, "0xH")
	require.NoError(t, err)
	assert.True(t, confirmed)

	pending, err := s.GetPendingDeposits(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 0)
}

func TestMemoryStore_LastProcessed_InitThenAdvance(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	require.NoError(t, s.InitLastProcessed(ctx, "ETH", 100))
	height, err := s.GetLastProcessed(ctx, "ETH")
	require.NoError(t, err)
	assert.Equal(t, uint64(99), height)

	// InitLastProcessed must not clobber an already-initialized chain
	// (spec.md §4.6: cold start only sets a seed once).
	require.NoError(t, s.InitLastProcessed(ctx, "ETH", 500))
	height, err = s.GetLastProcessed(ctx, "ETH")
	require.NoError(t, err)
	assert.Equal(t, uint64(99), height)

	require.NoError(t, s.SetLastProcessed(ctx, "ETH", 150))
	height, err = s.GetLastProcessed(ctx, "ETH")
	require.NoError(t, err)
	assert.Equal(t, uint64(150), height)
}

func TestMemoryStore_GetPendingDeposits_OrderedByBlockNumber(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	require.NoError(t, s.SaveDeposit(ctx, DepositInput{Chain: "ETH", TxHash: "0xB", BlockNumber: 200}))
	require.NoError(t, s.SaveDeposit(ctx, DepositInput{Chain: "ETH", TxHash: "0xA", BlockNumber: 100}))

	pending, err := s.GetPendingDeposits(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "0xA", pending[0].TxHash)
	assert.Equal(t, "0xB", pending[1].TxHash)
}
