package analyzer

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ground-x/xscanner/cache"
	"github.com/ground-x/xscanner/chain"
	"github.com/ground-x/xscanner/notify"
	"github.com/ground-x/xscanner/store"
)

// recordingPublisher captures every published event for assertions; it is
// safe for concurrent use since Analyzer.Run's consumer goroutine is the
// only writer in these tests but future callers may share it.
type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.DepositEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, evt notify.DepositEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) snapshot() []notify.DepositEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notify.DepositEvent, len(p.events))
	copy(out, p.events)
	return out
}

func strPtr(s string) *string { return &s }

func runBlocks(t *testing.T, az *Analyzer, blocks []chain.BlockData) {
	t.Helper()
	ch := make(chan chain.BlockData, len(blocks))
	for _, b := range blocks {
		ch <- b
	}
	close(ch)
	require.NoError(t, az.Run(context.Background(), ch))
}

func TestAnalyzer_S1_EVMDetection(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()
	require.NoError(t, c.Put(ctx, "ETH", "0xABC...ABC", cache.Metadata{WalletID: "w1", AccountID: strPtr("a1")}))

	s := store.NewMemoryStore()
	pub := &recordingPublisher{}

	az := New(c, s, pub, map[string]uint64{"ETH": 12})

	amount, _ := chain.DecimalFromHex("0xde0b6b3a7640000", chain.DivisorEVM)
	block := chain.BlockData{
		ChainSymbol: "ETH",
		Height:      100,
		Candidates: []chain.CandidateTransfer{
			{ToAddress: "0xABC...ABC", TxHash: "0xH", AmountRaw: "0xde0b6b3a7640000", AmountDecimal: &amount},
		},
	}
	runBlocks(t, az, []chain.BlockData{block})

	exists, err := s.DepositExists(ctx, "ETH", "0xH")
	require.NoError(t, err)
	assert.True(t, exists)

	events := pub.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventDepositDetected, events[0].Event)
	assert.Equal(t, uint64(1), events[0].Confirmations)
	assert.Equal(t, "w1", events[0].WalletID)

	height, err := s.GetLastProcessed(ctx, "ETH")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), height)
}

func TestAnalyzer_S3_IdempotentReingest(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()
	require.NoError(t, c.Put(ctx, "ETH", "0xabc", cache.Metadata{WalletID: "w1"}))

	s := store.NewMemoryStore()
	pub := &recordingPublisher{}
	az := New(c, s, pub, nil)

	block := chain.BlockData{
		ChainSymbol: "ETH",
		Height:      100,
		Candidates: []chain.CandidateTransfer{
			{ToAddress: "0xabc", TxHash: "0xH", AmountRaw: "100"},
		},
	}
	runBlocks(t, az, []chain.BlockData{block})
	runBlocks(t, az, []chain.BlockData{block}) // simulate restart replay

	pending, err := s.GetPendingDeposits(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Len(t, pub.snapshot(), 1, "duplicate ingest must not re-publish DepositDetected")
}

func TestAnalyzer_PromotesToConfirmedAtThreshold(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()
	require.NoError(t, c.Put(ctx, "ETH", "0xabc", cache.Metadata{WalletID: "w1"}))

	s := store.NewMemoryStore()
	pub := &recordingPublisher{}
	az := New(c, s, pub, map[string]uint64{"ETH": 3})

	detect := chain.BlockData{
		ChainSymbol: "ETH",
		Height:      100,
		Candidates:  []chain.CandidateTransfer{{ToAddress: "0xabc", TxHash: "0xH", AmountRaw: "100"}},
	}
	// Same tx reappearing at height 102 gives confirmations = 102-100+1 = 3.
	reconfirm := chain.BlockData{
		ChainSymbol: "ETH",
		Height:      102,
		Candidates:  []chain.CandidateTransfer{{ToAddress: "0xabc", TxHash: "0xH", AmountRaw: "100"}},
	}
	runBlocks(t, az, []chain.BlockData{detect, reconfirm})

	confirmed, err := s.IsDepositConfirmed(ctx, "0xH")
	require.NoError(t, err)
	assert.True(t, confirmed)

	events := pub.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, notify.EventDepositDetected, events[0].Event)
	assert.Equal(t, notify.EventDepositConfirmed, events[1].Event)
	assert.Equal(t, uint64(3), events[1].Confirmations)
}

func TestAnalyzer_CacheMissProducesNoEventAndNoStoreWrite(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache() // nothing registered
	s := store.NewMemoryStore()
	pub := &recordingPublisher{}
	az := New(c, s, pub, nil)

	block := chain.BlockData{
		ChainSymbol: "ETH",
		Height:      100,
		Candidates:  []chain.CandidateTransfer{{ToAddress: "0xunregistered", TxHash: "0xH", AmountRaw: "100"}},
	}
	runBlocks(t, az, []chain.BlockData{block})

	exists, err := s.DepositExists(ctx, "ETH", "0xH")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, pub.snapshot())
}

func TestAnalyzer_DefaultRequiredConfirmationsWhenChainUnconfigured(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()
	require.NoError(t, c.Put(ctx, "XYZ", "0xabc", cache.Metadata{WalletID: "w1"}))
	s := store.NewMemoryStore()
	az := New(c, s, &recordingPublisher{}, nil)

	assert.Equal(t, uint64(12), az.requiredConfirmationsFor("xyz"))
}
