package rabbitmq

import (
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/ai-studio/internal/creation"
)

func TestQueueNames(t *testing.T) {
	assert.Equal(t, "creation_events.retry", RetryQueue("creation_events"))
	assert.Equal(t, "creation_events.dlq", DeadLetterQueue("creation_events"))
}

func TestAttempt(t *testing.T) {
	assert.Equal(t, 0, Attempt(amqp.Delivery{}))
	assert.Equal(t, 2, Attempt(amqp.Delivery{Headers: amqp.Table{"x-attempt": int32(2)}}))
	assert.Equal(t, 3, Attempt(amqp.Delivery{Headers: amqp.Table{"x-attempt": int64(3)}}))
	assert.Equal(t, 4, Attempt(amqp.Delivery{Headers: amqp.Table{"x-attempt": "4"}}))
}

func TestCreationEvent_JSON(t *testing.T) {
	c := &creation.Creation{ID: "01J", UserID: "u1", Type: creation.KindImage, Publish: true, Content: "https://cdn/x.png"}
	b, err := json.Marshal(CreationEvent{CreationID: c.ID, UserID: c.UserID, Type: c.Type, Publish: c.Publish, Creation: c})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "01J", got["creation_id"])
	assert.Equal(t, "image", got["type"])
	assert.Equal(t, true, got["publish"])
}
