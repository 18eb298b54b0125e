package contact

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"intake/internal/constants"
	"intake/internal/logger"
	"intake/pkg/cel"
	apperrors "intake/pkg/errors"
	"intake/pkg/metrics"
	"intake/pkg/tracing"
)

// SinkFailureHook observes sink failures. It runs on the sink goroutine.
type SinkFailureHook func(sink string, err error)

type SubmitResult struct {
	Submission Submission
	Stored     *StoredSubmission
	// SinkErrors holds the failure of each sink that did not succeed.
	SinkErrors map[string]error
}

type Service struct {
	validator   *Validator
	notifier    Notifier
	persister   Persister
	events      EventPublisher
	screener    *cel.Screener
	logger      logger.Logger
	sinkTimeout time.Duration
	failureHook SinkFailureHook
}

type Option func(*Service)

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

func WithScreener(screener *cel.Screener) Option {
	return func(s *Service) {
		s.screener = screener
	}
}

func WithSinkTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sinkTimeout = d
		}
	}
}

func WithSinkFailureHook(hook SinkFailureHook) Option {
	return func(s *Service) {
		s.failureHook = hook
	}
}

func NewService(validator *Validator, notifier Notifier, persister Persister, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		validator:   validator,
		notifier:    notifier,
		persister:   persister,
		logger:      log,
		sinkTimeout: constants.DefaultSinkTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates input and fans it out to every configured sink. Sink
// failures are logged and reported but never fail the submission; only
// invalid input does.
func (s *Service) Submit(ctx context.Context, clientID string, input SubmissionInput) (*SubmitResult, error) {
	start := time.Now()

	sub, fieldErrs := s.validator.Validate(input)
	if fieldErrs != nil {
		metrics.IncSubmission("invalid")
		s.logger.InfowCtx(ctx, "Submission rejected",
			"client", clientID,
			"errors", len(fieldErrs),
		)
		return nil, apperrors.ErrValidation.
			WithCause(fieldErrs).
			WithDetail(apperrors.DetailErrors, []FieldError(fieldErrs))
	}

	sub = s.screen(ctx, sub)

	s.logger.InfowCtx(ctx, "Contact form submission",
		"client", clientID,
		"name", sub.Name(),
		"email", sub.Email(),
		"phone", orNotProvided(sub.Phone()),
		"organization", orNotProvided(sub.Organization()),
		"labels", sub.Labels(),
	)

	result := s.dispatch(ctx, sub)

	outcome := "accepted"
	if len(result.SinkErrors) > 0 {
		outcome = "accepted_degraded"
	}
	metrics.IncSubmission(outcome)
	metrics.ObserveSubmissionDuration(outcome, time.Since(start))

	return result, nil
}

func (s *Service) screen(ctx context.Context, sub Submission) Submission {
	if s.screener == nil || s.screener.Len() == 0 {
		return sub
	}

	labels, err := s.screener.Screen(ctx, cel.Fields{
		Name:         sub.Name(),
		Email:        sub.Email(),
		Phone:        sub.Phone(),
		Organization: sub.Organization(),
		Message:      sub.Message(),
	})
	if err != nil {
		s.logger.WarnwCtx(ctx, "Screening rule failed", "error", err)
	}

	for _, label := range labels {
		metrics.IncScreeningLabel(label)
	}

	return sub.WithLabels(labels)
}

type sink struct {
	name string
	run  func(ctx context.Context) error
}

func (s *Service) dispatch(ctx context.Context, sub Submission) *SubmitResult {
	result := &SubmitResult{Submission: sub}

	sinks := []sink{
		{
			name: constants.SinkEmail,
			run: func(ctx context.Context) error {
				return s.notifier.Notify(ctx, sub)
			},
		},
		{
			name: constants.SinkStorage,
			run: func(ctx context.Context) error {
				stored, err := s.persister.Persist(ctx, sub)
				if err != nil {
					return err
				}
				result.Stored = stored
				return nil
			},
		},
	}
	if s.events != nil {
		sinks = append(sinks, sink{
			name: constants.SinkEvents,
			run: func(ctx context.Context) error {
				return s.events.PublishSubmitted(ctx, sub)
			},
		})
	}

	// Sinks outlive a client disconnect but not the sink timeout.
	base := context.WithoutCancel(ctx)

	var mu sync.Mutex
	var g errgroup.Group
	for _, sk := range sinks {
		sk := sk
		g.Go(func() error {
			if err := s.runSink(base, sk); err != nil {
				mu.Lock()
				if result.SinkErrors == nil {
					result.SinkErrors = make(map[string]error)
				}
				result.SinkErrors[sk.name] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func (s *Service) runSink(base context.Context, sk sink) (err error) {
	ctx, cancel := context.WithTimeout(base, s.sinkTimeout)
	defer cancel()

	ctx, span := tracing.StartSpan(ctx, "contact.sink."+sk.name, attribute.String("sink", sk.name))

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.RecoverPanic(r)
		}

		status := "success"
		if err != nil {
			status = "error"
			err = apperrors.ErrSinkFailure.WithCause(err).WithDetail("sink", sk.name)
			s.reportFailure(ctx, sk.name, err)
		}
		metrics.ObserveSinkDuration(sk.name, status, time.Since(start))
		tracing.EndSpan(span, err)
	}()

	if err := sk.run(ctx); err != nil {
		return fmt.Errorf("%s sink: %w", sk.name, err)
	}
	return nil
}

func (s *Service) reportFailure(ctx context.Context, sink string, err error) {
	metrics.IncSinkFailure(sink)
	s.logger.ErrorwCtx(ctx, "Sink failed",
		"sink", sink,
		"error", err,
	)
	if s.failureHook != nil {
		s.failureHook(sink, err)
	}
}
