package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageEnvelopeBuilder(t *testing.T) {
	msg := NewMessageEnvelopeBuilder().
		WithID("abc").
		WithSource("intake-service").
		WithType("contact.submitted").
		WithPayloadField("email", "jane@example.com").
		WithTraceID("trace-1").
		WithRequestID("req-1").
		WithLabels([]string{"has_phone"}).
		Build()

	require.NoError(t, ValidateMessageEnvelope(msg))
	assert.False(t, msg.Timestamp.IsZero())
	assert.Equal(t, time.UTC, msg.Timestamp.Location())
	assert.Equal(t, "jane@example.com", msg.Payload["email"])
	assert.Equal(t, []string{"has_phone"}, msg.Metadata.Labels)
}

func TestValidateMessageEnvelope(t *testing.T) {
	tests := []struct {
		name  string
		msg   *MessageEnvelope
		field string
	}{
		{"nil", nil, "envelope"},
		{"missing id", &MessageEnvelope{Source: "s"}, "id"},
		{"missing source", &MessageEnvelope{ID: "1"}, "source"},
		{"missing type", &MessageEnvelope{ID: "1", Source: "s"}, "type"},
		{"missing timestamp", &MessageEnvelope{ID: "1", Source: "s", Type: "t"}, "timestamp"},
		{"empty payload", &MessageEnvelope{ID: "1", Source: "s", Type: "t", Timestamp: time.Now()}, "payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessageEnvelope(tt.msg)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestValidateMessageEnvelope_ReportsEveryField(t *testing.T) {
	err := ValidateMessageEnvelope(&MessageEnvelope{ID: "1"})
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)

	var fields []string
	for _, e := range joined.Unwrap() {
		var vErr *ValidationError
		require.ErrorAs(t, e, &vErr)
		fields = append(fields, vErr.Field)
	}
	assert.Equal(t, []string{"source", "type", "timestamp", "payload"}, fields)
}
