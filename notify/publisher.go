package notify

import (
	"context"
	"encoding/json"

	"github.com/ground-x/xscanner/common"
)

// Publisher is the outbound deposit-event sink of spec.md §4.8.
type Publisher interface {
	Publish(ctx context.Context, evt DepositEvent) error
}

// sqsPublisher serializes DepositEvent as JSON and sends it to the
// configured outbound queue. There is no local retry queue (spec.md §4.8):
// a Send failure is returned to the caller, which logs and moves on.
type sqsPublisher struct {
	client *QueueClient
}

// NewSQSPublisher builds a Publisher bound to queueURL.
func NewSQSPublisher(queueURL, region string) (Publisher, error) {
	client, err := NewQueueClient(queueURL, region)
	if err != nil {
		return nil, err
	}
	return &sqsPublisher{client: client}, nil
}

func (p *sqsPublisher) Publish(ctx context.Context, evt DepositEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return common.Wrap(common.KindLogic, "sqsPublisher.Publish", err)
	}
	return p.client.Send(ctx, string(body))
}

// NoopPublisher discards every event; used when no outbound queue is
// configured (e.g. in tests).
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, evt DepositEvent) error { return nil }
