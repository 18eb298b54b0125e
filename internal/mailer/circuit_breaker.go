package mailer

import (
	"context"
	"fmt"

	"intake/pkg/circuitbreaker"
)

type CircuitBreakerSender struct {
	sender Sender
	cb     *circuitbreaker.Wrapper
}

func NewCircuitBreakerSender(sender Sender, cfg circuitbreaker.Config) *CircuitBreakerSender {
	return &CircuitBreakerSender{
		sender: sender,
		cb:     circuitbreaker.NewWrapper(cfg),
	}
}

func (s *CircuitBreakerSender) Send(ctx context.Context, msg Message) error {
	err := s.cb.Execute(ctx, func() error {
		return s.sender.Send(ctx, msg)
	})
	if err != nil && circuitbreaker.IsOpenError(err) {
		return fmt.Errorf("circuit breaker is open for %s: %w", s.cb.Name(), err)
	}
	return err
}

func (s *CircuitBreakerSender) State() string {
	return s.cb.State().String()
}
