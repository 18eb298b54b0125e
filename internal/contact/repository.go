package contact

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"intake/internal/constants"
	"intake/pkg/metrics"
)

type PostgresRepository struct {
	db    *sql.DB
	clock *MonotonicClock
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, clock: defaultClock}
}

func (r *PostgresRepository) Insert(ctx context.Context, sub Submission) (*StoredSubmission, error) {
	stored := &StoredSubmission{
		ID:           uuid.New().String(),
		Name:         sub.Name(),
		Email:        sub.Email(),
		Phone:        optional(sub.Phone()),
		Organization: optional(sub.Organization()),
		Message:      sub.Message(),
		CreatedAt:    r.clock.Now(),
	}

	query := `
		INSERT INTO contact_submissions (id, name, email, phone, organization, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		stored.ID, stored.Name, stored.Email,
		stored.Phone, stored.Organization, stored.Message, stored.CreatedAt,
	)
	observeQuery("insert", start, err)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return nil, fmt.Errorf("failed to insert submission (pq %s): %w", pqErr.Code, err)
		}
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}

	return stored, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]StoredSubmission, error) {
	query := `
		SELECT id, name, email, phone, organization, message, created_at
		FROM contact_submissions
		ORDER BY created_at DESC
	`

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		observeQuery("list", start, err)
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]StoredSubmission, 0)
	for rows.Next() {
		var s StoredSubmission
		var phone, organization sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &phone, &organization, &s.Message, &s.CreatedAt); err != nil {
			observeQuery("list", start, err)
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		if phone.Valid {
			s.Phone = &phone.String
		}
		if organization.Valid {
			s.Organization = &organization.String
		}
		s.CreatedAt = s.CreatedAt.UTC()
		submissions = append(submissions, s)
	}

	err = rows.Err()
	observeQuery("list", start, err)
	if err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}

	return submissions, nil
}

func observeQuery(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.IncDatabaseQuery(constants.DriverPostgres, operation, status)
	metrics.ObserveDatabaseQueryDuration(constants.DriverPostgres, operation, time.Since(start))
}
