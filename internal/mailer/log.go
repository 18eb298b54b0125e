package mailer

import (
	"context"

	"intake/internal/logger"
)

// LogSender writes the envelope to the log instead of sending it.
type LogSender struct {
	logger logger.Logger
}

func NewLogSender(log logger.Logger) *LogSender {
	return &LogSender{logger: log}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfowCtx(ctx, "Email not sent, log provider active",
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"html_bytes", len(msg.HTML),
	)
	return nil
}
