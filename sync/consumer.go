// Package sync implements the Address-Sync Consumer of spec.md §4.4: a
// startup warm-up from an optional cache file, followed by a steady-state
// long-poll of the inbound address queue that batches writes into the
// address cache.
package sync

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/ground-x/xscanner/cache"
	xlog "github.com/ground-x/xscanner/log"
	"github.com/ground-x/xscanner/notify"
)

var logger = xlog.NewModuleLogger("sync")

// receiveMaxMessages and receiveWaitSeconds bound a single long-poll
// Receive call; the flush loop runs independently of how long a poll
// blocks, per spec.md §5's "shared buffer guarded by a lock" model.
const (
	receiveMaxMessages = 10
	receiveWaitSeconds = 20
)

// warmupRow is one entry of the optional startup cache file (spec.md
// §4.4's warm-up format).
type warmupRow struct {
	Address   string  `json:"address"`
	Chain     string  `json:"chain"`
	WalletID  string  `json:"wallet_id"`
	AccountID *string `json:"account_id,omitempty"`
}

// bufferedItem pairs a cache entry with the SQS receipt handle of the
// message it came from, so it can be deleted once flushed.
type bufferedItem struct {
	entry   cache.Entry
	receipt string
}

// InboundQueue is the slice of notify.QueueClient the consumer needs;
// declaring it here (rather than depending on the concrete type) keeps the
// consumer testable with a fake, the same way fetcher.StartHeightStore
// narrows its store dependency.
type InboundQueue interface {
	Receive(ctx context.Context, maxMessages, waitSeconds int64) ([]notify.Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// Consumer drives the address cache's write path: the single writer task
// spec.md §5 requires.
type Consumer struct {
	cache         cache.Cache
	queue         InboundQueue
	batchSize     int
	flushInterval time.Duration
	cacheFilePath string

	mu     sync.Mutex
	buffer []bufferedItem

	log *xlog.Logger
}

// New builds a Consumer. queue may be nil, in which case Run performs only
// the startup warm-up and then blocks until ctx is cancelled (used when no
// customer_sync.sqs_queue_url is configured).
func New(c cache.Cache, queue InboundQueue, batchSize int, flushInterval time.Duration, cacheFilePath string) *Consumer {
	return &Consumer{
		cache:         c,
		queue:         queue,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		cacheFilePath: cacheFilePath,
		log:           logger,
	}
}

// Run performs the startup warm-up, then the steady-state receive/flush
// loops until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.warmUp(ctx)

	if c.queue == nil {
		<-ctx.Done()
		return nil
	}

	done := make(chan struct{})
	go func() {
		c.receiveLoop(ctx)
		close(done)
	}()

	c.flushLoop(ctx)
	<-done
	c.flush(ctx)
	return nil
}

// warmUp loads the optional cache file (spec.md §4.4: "Missing file is not
// an error; parse errors ARE errors but do not abort the process").
func (c *Consumer) warmUp(ctx context.Context) {
	if c.cacheFilePath == "" {
		return
	}

	data, err := os.ReadFile(c.cacheFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		c.log.Warn("cache file read failed, continuing without warm-up", "path", c.cacheFilePath, "err", err)
		return
	}

	var rows []warmupRow
	if err := json.Unmarshal(data, &rows); err != nil {
		c.log.Warn("cache file parse failed, continuing without warm-up", "path", c.cacheFilePath, "err", err)
		return
	}

	entries := make([]cache.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, cache.Entry{
			Chain:    r.Chain,
			Address:  r.Address,
			Metadata: cache.Metadata{WalletID: r.WalletID, AccountID: r.AccountID},
		})
	}
	if err := c.cache.BatchPut(ctx, entries); err != nil {
		c.log.Warn("cache warm-up batch load failed", "err", err)
		return
	}
	c.log.Info("address cache warm-up complete", "entries", len(entries))
}

func (c *Consumer) receiveLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		msgs, err := c.queue.Receive(ctx, receiveMaxMessages, receiveWaitSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("address queue receive failed, retrying", "err", err)
			continue
		}
		for _, m := range msgs {
			c.handleMessage(ctx, m)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, m notify.Message) {
	var payload notify.CustomerAddressAddedPayload
	if err := json.Unmarshal([]byte(m.Body), &payload); err != nil {
		c.log.Warn("address event parse failed, dropping message", "err", err)
		c.deleteMessage(ctx, m.ReceiptHandle)
		return
	}
	if payload.Event != notify.EventCustomerAddressAdded {
		c.log.Warn("unrecognized event type, skipping message", "event", payload.Event)
		c.deleteMessage(ctx, m.ReceiptHandle)
		return
	}

	entry := cache.Entry{
		Chain:   payload.Chain,
		Address: payload.Address,
		Metadata: cache.Metadata{
			WalletID:  payload.WalletID,
			AccountID: payload.AccountID,
		},
	}

	c.mu.Lock()
	c.buffer = append(c.buffer, bufferedItem{entry: entry, receipt: m.ReceiptHandle})
	full := len(c.buffer) >= c.batchSize
	c.mu.Unlock()

	if full {
		c.flush(ctx)
	}
}

func (c *Consumer) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.flush(ctx)
		}
	}
}

// flush drains the buffer and batch-writes it to the cache, deleting each
// source message only once the write succeeds (spec.md §4.4). On write
// failure the messages are left undeleted; they redeliver via the queue's
// visibility timeout and the eventual retry is absorbed by Put's
// idempotence.
func (c *Consumer) flush(ctx context.Context) {
	c.mu.Lock()
	items := c.buffer
	c.buffer = nil
	c.mu.Unlock()

	if len(items) == 0 {
		return
	}

	entries := make([]cache.Entry, len(items))
	for i, it := range items {
		entries[i] = it.entry
	}

	if err := c.cache.BatchPut(ctx, entries); err != nil {
		c.log.Warn("batch flush to address cache failed, messages will redeliver", "count", len(entries), "err", err)
		return
	}

	for _, it := range items {
		c.deleteMessage(ctx, it.receipt)
	}
}

func (c *Consumer) deleteMessage(ctx context.Context, receipt string) {
	if err := c.queue.Delete(ctx, receipt); err != nil {
		c.log.Warn("failed to delete processed message from queue", "err", err)
	}
}
