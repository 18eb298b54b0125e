package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"intake/internal/constants"
	"intake/internal/logger"
	"intake/pkg/metrics"
	"intake/pkg/retry"
)

const maxErrorBody = 1024

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// StatusError is a non-2xx answer from the mail API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mail api returned status %d: %s", e.StatusCode, e.Body)
}

// IsFatal reports client errors other than throttling, which retrying cannot fix.
func (e *StatusError) IsFatal() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

type ResendSender struct {
	client   *http.Client
	endpoint string
	apiKey   string
	policy   retry.Policy
	logger   logger.Logger
}

func NewResendSender(endpoint, apiKey string, policy retry.Policy, log logger.Logger) *ResendSender {
	if endpoint == "" {
		endpoint = constants.DefaultResendEndpoint
	}
	return &ResendSender{
		client: &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
		},
		endpoint: endpoint,
		apiKey:   apiKey,
		policy:   policy,
		logger:   log,
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal mail request: %w", err)
	}

	return retry.DoNotify(ctx, s.policy, func() error {
		return s.post(ctx, body)
	}, func(attempt int, err error, nextDelay time.Duration) {
		metrics.IncRetryAttempt("mail_send")
		s.logger.WarnwCtx(ctx, "Mail send failed, retrying",
			"attempt", attempt,
			"next_delay", nextDelay,
			"error", err,
		)
	})
}

func (s *ResendSender) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= constants.HTTPStatusOKMin && resp.StatusCode < constants.HTTPStatusOKMax {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	if statusErr.IsFatal() {
		return retry.Permanent(statusErr)
	}
	return statusErr
}
