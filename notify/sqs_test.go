package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLocalQueueURL(t *testing.T) {
	assert.True(t, isLocalQueueURL("http://localhost:9324/queue/inbound"))
	assert.True(t, isLocalQueueURL("http://127.0.0.1:9324/queue/inbound"))
	assert.False(t, isLocalQueueURL("https://sqs.us-east-1.amazonaws.com/123/inbound"))
}

func TestLocalQueueEndpoint(t *testing.T) {
	assert.Equal(t, "http://localhost:9324", localQueueEndpoint("http://localhost:9324/queue/inbound"))
	assert.Equal(t, "http://localhost:9324/nope", localQueueEndpoint("http://localhost:9324/nope"))
}
