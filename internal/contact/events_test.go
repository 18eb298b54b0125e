package contact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/internal/constants"
	"intake/pkg/logging"
	"intake/pkg/models"
)

type capturingProducer struct {
	topic string
	msgs  []models.MessageEnvelope
}

func (p *capturingProducer) Publish(_ context.Context, topic string, msg models.MessageEnvelope) error {
	p.topic = topic
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *capturingProducer) Close() error { return nil }

func TestLeadPublisher_PublishSubmitted(t *testing.T) {
	producer := &capturingProducer{}
	publisher := NewLeadPublisher(producer, "leads")

	sub := mustValidate(t, SubmissionInput{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"message": "Hello there",
	}).WithLabels([]string{"vip"})

	ctx := logging.WithRequestID(context.Background(), "req-1")
	require.NoError(t, publisher.PublishSubmitted(ctx, sub))

	assert.Equal(t, "leads", producer.topic)
	require.Len(t, producer.msgs, 1)

	msg := producer.msgs[0]
	require.NoError(t, models.ValidateMessageEnvelope(&msg))
	assert.Equal(t, constants.ServiceName, msg.Source)
	assert.Equal(t, EventTypeSubmitted, msg.Type)
	assert.Equal(t, "Jane Doe", msg.Payload["name"])
	assert.Nil(t, msg.Payload["phone"])
	assert.Equal(t, []string{"vip"}, msg.Payload["labels"])
	assert.Equal(t, "req-1", msg.Metadata.RequestID)
	assert.Equal(t, []string{"vip"}, msg.Metadata.Labels)
}
