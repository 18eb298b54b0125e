package models

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

type envelopeRule struct {
	field   string
	message string
	missing func(*MessageEnvelope) bool
}

var envelopeRules = []envelopeRule{
	{"id", "message ID is required", func(m *MessageEnvelope) bool { return m.ID == "" }},
	{"source", "message source is required", func(m *MessageEnvelope) bool { return m.Source == "" }},
	{"type", "message type is required", func(m *MessageEnvelope) bool { return m.Type == "" }},
	{"timestamp", "message timestamp is required", func(m *MessageEnvelope) bool { return m.Timestamp.IsZero() }},
	{"payload", "message payload cannot be empty", func(m *MessageEnvelope) bool { return len(m.Payload) == 0 }},
}

// ValidateMessageEnvelope reports every missing envelope field. The returned
// error unwraps to one *ValidationError per field.
func ValidateMessageEnvelope(msg *MessageEnvelope) error {
	if msg == nil {
		return &ValidationError{Field: "envelope", Message: "message envelope cannot be nil"}
	}

	var errs []error
	for _, rule := range envelopeRules {
		if rule.missing(msg) {
			errs = append(errs, &ValidationError{Field: rule.field, Message: rule.message})
		}
	}
	return errors.Join(errs...)
}
