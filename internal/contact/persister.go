package contact

import (
	"context"
	"fmt"

	apperrors "intake/pkg/errors"
)

// Repository stores and lists submissions. Implementations assign ID and CreatedAt.
type Repository interface {
	Insert(ctx context.Context, sub Submission) (*StoredSubmission, error)
	ListAll(ctx context.Context) ([]StoredSubmission, error)
}

type Persister interface {
	Persist(ctx context.Context, sub Submission) (*StoredSubmission, error)
}

type PersistError struct {
	Cause error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist failed: %v", e.Cause)
}

func (e *PersistError) Unwrap() error {
	return e.Cause
}

func (e *PersistError) Is(target error) bool {
	return target == apperrors.ErrSinkFailure
}

type RepositoryPersister struct {
	repo Repository
}

func NewPersister(repo Repository) *RepositoryPersister {
	return &RepositoryPersister{repo: repo}
}

func (p *RepositoryPersister) Persist(ctx context.Context, sub Submission) (*StoredSubmission, error) {
	stored, err := p.repo.Insert(ctx, sub)
	if err != nil {
		return nil, &PersistError{Cause: err}
	}
	return stored, nil
}
