package notify

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"

	"github.com/ground-x/xscanner/common"
	xlog "github.com/ground-x/xscanner/log"
)

var logger = xlog.NewModuleLogger("notify")

// Message is one inbound SQS message: its body and the receipt handle
// needed to delete it.
type Message struct {
	Body          string
	ReceiptHandle string
}

// QueueClient wraps the aws-sdk-go SQS client for a single queue URL. It
// is shared by the outbound Publisher and the inbound address-sync
// consumer.
type QueueClient struct {
	svc      *sqs.SQS
	queueURL string
}

// NewQueueClient builds a QueueClient for queueURL in region.
//
// Per spec.md §4.4: "A local-testing endpoint override is supported: if
// the queue URL is a localhost URL, static 'dummy' credentials are used
// and the endpoint is directed at the local queue emulator. Production
// credentials come from the ambient AWS environment."
func NewQueueClient(queueURL, region string) (*QueueClient, error) {
	cfg := aws.NewConfig().WithRegion(region)

	if isLocalQueueURL(queueURL) {
		cfg = cfg.
			WithCredentials(credentials.NewStaticCredentials("dummy", "dummy", "dummy")).
			WithEndpoint(localQueueEndpoint(queueURL)).
			WithRegion("us-east-1")
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, common.Wrap(common.KindInitialization, "NewQueueClient", err)
	}

	return &QueueClient{svc: sqs.New(sess), queueURL: queueURL}, nil
}

func isLocalQueueURL(queueURL string) bool {
	return strings.Contains(queueURL, "localhost") || strings.Contains(queueURL, "127.0.0.1")
}

func localQueueEndpoint(queueURL string) string {
	// The local emulator (elasticmq/localstack-style) is addressed
	// directly; the queue URL path still identifies the queue.
	if idx := strings.Index(queueURL, "/queue"); idx > 0 {
		return queueURL[:idx]
	}
	return queueURL
}

// Send publishes body as a single SQS message.
func (c *QueueClient) Send(ctx context.Context, body string) error {
	_, err := c.svc.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.queueURL),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return common.Wrap(common.KindTransient, "QueueClient.Send", err)
	}
	return nil
}

// Receive long-polls up to maxMessages, waiting up to waitSeconds for at
// least one to arrive.
func (c *QueueClient) Receive(ctx context.Context, maxMessages, waitSeconds int64) ([]Message, error) {
	out, err := c.svc.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: aws.Int64(maxMessages),
		WaitTimeSeconds:     aws.Int64(waitSeconds),
	})
	if err != nil {
		return nil, common.Wrap(common.KindTransient, "QueueClient.Receive", err)
	}
	msgs := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, Message{Body: aws.StringValue(m.Body), ReceiptHandle: aws.StringValue(m.ReceiptHandle)})
	}
	return msgs, nil
}

// Delete removes a message after it has been processed (or deliberately
// dropped; spec.md §4.4 deletes poison messages too).
func (c *QueueClient) Delete(ctx context.Context, receiptHandle string) error {
	_, err := c.svc.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return common.Wrap(common.KindTransient, "QueueClient.Delete", err)
	}
	return nil
}
