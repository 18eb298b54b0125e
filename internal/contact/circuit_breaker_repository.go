package contact

import (
	"context"
	"fmt"

	"intake/internal/config"
	"intake/pkg/circuitbreaker"
)

// CircuitBreakerRepository stops hammering a failing database. With the
// breaker disabled it passes calls straight through.
type CircuitBreakerRepository struct {
	repo Repository
	cb   *circuitbreaker.Wrapper
}

func NewCircuitBreakerRepository(repo Repository, name string, cfg config.CircuitBreakerConfig) *CircuitBreakerRepository {
	if !cfg.Enabled {
		return &CircuitBreakerRepository{repo: repo}
	}

	cbConfig := circuitbreaker.DefaultConfig(name)
	if cfg.MaxRequests > 0 {
		cbConfig.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		cbConfig.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		cbConfig.Timeout = cfg.Timeout
	}
	if cfg.FailureRatio > 0 {
		cbConfig.FailureRatio = cfg.FailureRatio
	}
	if cfg.MinRequests > 0 {
		cbConfig.MinRequests = cfg.MinRequests
	}

	return &CircuitBreakerRepository{
		repo: repo,
		cb:   circuitbreaker.NewWrapper(cbConfig),
	}
}

func (r *CircuitBreakerRepository) Insert(ctx context.Context, sub Submission) (*StoredSubmission, error) {
	if r.cb == nil {
		return r.repo.Insert(ctx, sub)
	}

	var stored *StoredSubmission
	err := r.cb.Execute(ctx, func() error {
		var err error
		stored, err = r.repo.Insert(ctx, sub)
		return err
	})
	if err != nil {
		return nil, r.wrap(err)
	}
	return stored, nil
}

func (r *CircuitBreakerRepository) ListAll(ctx context.Context) ([]StoredSubmission, error) {
	if r.cb == nil {
		return r.repo.ListAll(ctx)
	}

	var submissions []StoredSubmission
	err := r.cb.Execute(ctx, func() error {
		var err error
		submissions, err = r.repo.ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, r.wrap(err)
	}
	return submissions, nil
}

func (r *CircuitBreakerRepository) wrap(err error) error {
	if circuitbreaker.IsOpenError(err) {
		return fmt.Errorf("circuit breaker is open for %s: %w", r.cb.Name(), err)
	}
	return err
}

func (r *CircuitBreakerRepository) State() string {
	if r.cb == nil {
		return "disabled"
	}
	return r.cb.State().String()
}
