package contact

import (
	"context"

	"github.com/google/uuid"

	"intake/internal/broker"
	"intake/internal/constants"
	"intake/pkg/logging"
	"intake/pkg/models"
)

const EventTypeSubmitted = "contact.submitted"

type EventPublisher interface {
	PublishSubmitted(ctx context.Context, sub Submission) error
}

// LeadPublisher announces every accepted submission on a broker topic.
type LeadPublisher struct {
	producer broker.Producer
	topic    string
}

func NewLeadPublisher(producer broker.Producer, topic string) *LeadPublisher {
	return &LeadPublisher{producer: producer, topic: topic}
}

func (p *LeadPublisher) PublishSubmitted(ctx context.Context, sub Submission) error {
	labels := sub.Labels()
	if labels == nil {
		labels = []string{}
	}

	msg := models.NewMessageEnvelopeBuilder().
		WithID(uuid.New().String()).
		WithSource(constants.ServiceName).
		WithType(EventTypeSubmitted).
		WithPayloadField("name", sub.Name()).
		WithPayloadField("email", sub.Email()).
		WithPayloadField("phone", optional(sub.Phone())).
		WithPayloadField("organization", optional(sub.Organization())).
		WithPayloadField("message", sub.Message()).
		WithPayloadField("labels", labels).
		WithTraceID(logging.GetTraceID(ctx)).
		WithRequestID(logging.GetRequestID(ctx)).
		WithLabels(sub.Labels()).
		Build()

	return p.producer.Publish(ctx, p.topic, *msg)
}
