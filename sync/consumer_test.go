package sync

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ground-x/xscanner/cache"
	"github.com/ground-x/xscanner/notify"
)

// fakeQueue is an in-memory InboundQueue: Receive returns a fixed batch
// once, then blocks (via an empty channel) until the test stops polling;
// Delete records which receipts were acknowledged.
type fakeQueue struct {
	mu       sync.Mutex
	messages []notify.Message
	deleted  map[string]bool
	served   bool
}

func newFakeQueue(msgs []notify.Message) *fakeQueue {
	return &fakeQueue{messages: msgs, deleted: make(map[string]bool)}
}

func (q *fakeQueue) Receive(ctx context.Context, maxMessages, waitSeconds int64) ([]notify.Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.served {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	q.served = true
	return q.messages, nil
}

func (q *fakeQueue) Delete(ctx context.Context, receiptHandle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deleted[receiptHandle] = true
	return nil
}

func (q *fakeQueue) wasDeleted(receipt string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.deleted[receipt]
}

func addressAddedBody(t *testing.T, chain, address, walletID string, accountID *string) string {
	t.Helper()
	payload := notify.CustomerAddressAddedPayload{
		Event:     notify.EventCustomerAddressAdded,
		Address:   address,
		Chain:     chain,
		WalletID:  walletID,
		AccountID: accountID,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(body)
}

func TestConsumer_WarmUp_LoadsCacheFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "xscanner-sync-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "cache.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(`[{"address":"0x1","chain":"ETH","wallet_id":"wA"}]`), 0644))

	c := cache.NewMemoryCache()
	consumer := New(c, nil, 100, time.Second, path)
	consumer.warmUp(context.Background())

	meta, err := c.GetMetadata(context.Background(), "ETH", "0x1")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "wA", meta.WalletID)
	assert.Nil(t, meta.AccountID)
}

func TestConsumer_WarmUp_MissingFileIsNotAnError(t *testing.T) {
	c := cache.NewMemoryCache()
	consumer := New(c, nil, 100, time.Second, "/nonexistent/cache.json")
	assert.NotPanics(t, func() { consumer.warmUp(context.Background()) })
}

func TestConsumer_WarmUp_CorruptFileDoesNotAbort(t *testing.T) {
	dir, err := ioutil.TempDir("", "xscanner-sync-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "cache.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(`not json`), 0644))

	c := cache.NewMemoryCache()
	consumer := New(c, nil, 100, time.Second, path)
	assert.NotPanics(t, func() { consumer.warmUp(context.Background()) })
}

func TestConsumer_HandleMessage_BuffersAndFlushesOnBatchSize(t *testing.T) {
	c := cache.NewMemoryCache()
	consumer := New(c, nil, 2, time.Hour, "")

	msg1 := notify.Message{Body: addressAddedBody(t, "ETH", "0xabc", "w1", nil), ReceiptHandle: "r1"}
	msg2 := notify.Message{Body: addressAddedBody(t, "BTC", "bc1q", "w2", nil), ReceiptHandle: "r2"}

	q := newFakeQueue(nil)
	consumer.queue = q

	ctx := context.Background()
	consumer.handleMessage(ctx, msg1)
	assert.False(t, q.wasDeleted("r1"), "must not delete before the batch flushes")

	consumer.handleMessage(ctx, msg2) // batch size reached -> flush
	assert.True(t, q.wasDeleted("r1"))
	assert.True(t, q.wasDeleted("r2"))

	ok, err := c.IsMonitored(ctx, "eth", "0xabc")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConsumer_HandleMessage_UnknownEventIsSkippedAndDeleted(t *testing.T) {
	c := cache.NewMemoryCache()
	consumer := New(c, nil, 100, time.Hour, "")
	q := newFakeQueue(nil)
	consumer.queue = q

	body, err := json.Marshal(map[string]string{"event": "SomethingElse"})
	require.NoError(t, err)
	msg := notify.Message{Body: string(body), ReceiptHandle: "r1"}

	consumer.handleMessage(context.Background(), msg)
	assert.True(t, q.wasDeleted("r1"))
	assert.Empty(t, consumer.buffer)
}

func TestConsumer_HandleMessage_ParseFailureIsDeletedAndSkipped(t *testing.T) {
	c := cache.NewMemoryCache()
	consumer := New(c, nil, 100, time.Hour, "")
	q := newFakeQueue(nil)
	consumer.queue = q

	msg := notify.Message{Body: "not json", ReceiptHandle: "r1"}
	consumer.handleMessage(context.Background(), msg)

	assert.True(t, q.wasDeleted("r1"))
	assert.Empty(t, consumer.buffer)
}

func TestConsumer_Flush_LeavesMessagesUndeletedOnCacheFailure(t *testing.T) {
	c := &failingBatchPutCache{Cache: cache.NewMemoryCache()}
	consumer := New(c, nil, 100, time.Hour, "")
	q := newFakeQueue(nil)
	consumer.queue = q

	msg := notify.Message{Body: addressAddedBody(t, "ETH", "0xabc", "w1", nil), ReceiptHandle: "r1"}
	consumer.handleMessage(context.Background(), msg)
	consumer.flush(context.Background())

	assert.False(t, q.wasDeleted("r1"), "a failed flush must leave the message for redelivery")
}

type failingBatchPutCache struct {
	cache.Cache
}

func (f *failingBatchPutCache) BatchPut(ctx context.Context, entries []cache.Entry) error {
	return assertErr{}
}

type assertErr struct{}

func (assertErr) Error() string { return "batch put failed" }
