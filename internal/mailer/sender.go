// Package mailer delivers transactional email.
package mailer

import (
	"context"
	"fmt"

	"intake/internal/config"
	"intake/internal/constants"
	"intake/internal/logger"
	"intake/pkg/circuitbreaker"
	"intake/pkg/retry"
)

type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender picks the configured provider. A resend provider without an API
// key degrades to LogSender so local runs need no credentials.
func NewSender(cfg config.MailConfig, cbCfg config.CircuitBreakerConfig, log logger.Logger) (Sender, error) {
	var sender Sender

	switch cfg.Provider {
	case constants.MailProviderLog:
		sender = NewLogSender(log)
	case constants.MailProviderResend:
		if cfg.APIKey == "" {
			log.Warnw("Mail API key is not set, notification emails will only be logged")
			sender = NewLogSender(log)
			break
		}
		policy := retry.Policy{
			MaxAttempts:     cfg.Retry.MaxAttempts,
			InitialInterval: cfg.Retry.InitialInterval,
			MaxInterval:     cfg.Retry.MaxInterval,
			Multiplier:      cfg.Retry.Multiplier,
		}
		sender = NewResendSender(cfg.Endpoint, cfg.APIKey, policy, log)
	default:
		return nil, fmt.Errorf("unknown mail provider: %s", cfg.Provider)
	}

	if cbCfg.Enabled {
		sender = NewCircuitBreakerSender(sender, circuitbreaker.Config{
			Name:         "mailer",
			MaxRequests:  cbCfg.MaxRequests,
			Interval:     cbCfg.Interval,
			Timeout:      cbCfg.Timeout,
			FailureRatio: cbCfg.FailureRatio,
			MinRequests:  cbCfg.MinRequests,
		})
	}

	return sender, nil
}
