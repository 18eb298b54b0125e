package contact

import (
	"context"

	"intake/internal/logger"
)

// Reader serves the admin list of submissions, newest first.
type Reader struct {
	repo          Repository
	logger        logger.Logger
	surfaceErrors bool
}

func NewReader(repo Repository, log logger.Logger, surfaceErrors bool) *Reader {
	return &Reader{repo: repo, logger: log, surfaceErrors: surfaceErrors}
}

// ListAll never returns a nil slice. Repository failures are logged and yield
// an empty list unless the reader was built to surface them.
func (r *Reader) ListAll(ctx context.Context) ([]StoredSubmission, error) {
	submissions, err := r.repo.ListAll(ctx)
	if err != nil {
		r.logger.ErrorwCtx(ctx, "Failed to list submissions", "error", err)
		if r.surfaceErrors {
			return []StoredSubmission{}, err
		}
		return []StoredSubmission{}, nil
	}

	if submissions == nil {
		submissions = []StoredSubmission{}
	}
	return submissions, nil
}
