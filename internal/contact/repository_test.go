package contact

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepository is an in-memory Repository for service and handler tests.
type memRepository struct {
	clock     *MonotonicClock
	stored    []StoredSubmission
	insertErr error
	listErr   error
}

func newMemRepository() *memRepository {
	return &memRepository{clock: NewMonotonicClock(nil)}
}

func (r *memRepository) Insert(_ context.Context, sub Submission) (*StoredSubmission, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	s := StoredSubmission{
		ID:           "sub-" + sub.Name(),
		Name:         sub.Name(),
		Email:        sub.Email(),
		Phone:        optional(sub.Phone()),
		Organization: optional(sub.Organization()),
		Message:      sub.Message(),
		CreatedAt:    r.clock.Now(),
	}
	r.stored = append(r.stored, s)
	return &s, nil
}

func (r *memRepository) ListAll(context.Context) ([]StoredSubmission, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]StoredSubmission, 0, len(r.stored))
	for i := len(r.stored) - 1; i >= 0; i-- {
		out = append(out, r.stored[i])
	}
	return out, nil
}

var submissionColumns = []string{"id", "name", "email", "phone", "organization", "message", "created_at"}

func TestPostgresRepository_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO contact_submissions")).
		WithArgs(sqlmock.AnyArg(), "Jane Doe", "jane@example.com", "+1 555 1234567", nil, "Hello there", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sub := mustValidate(t, SubmissionInput{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"phone":   "+1 555 1234567",
		"message": "Hello there",
	})

	stored, err := NewPostgresRepository(db).Insert(context.Background(), sub)
	require.NoError(t, err)

	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, "Jane Doe", stored.Name)
	require.NotNil(t, stored.Phone)
	assert.Equal(t, "+1 555 1234567", *stored.Phone)
	assert.Nil(t, stored.Organization)
	assert.Equal(t, time.UTC, stored.CreatedAt.Location())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_InsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO contact_submissions")).
		WillReturnError(errors.New("relation does not exist"))

	_, err = NewPostgresRepository(db).Insert(context.Background(), mustValidate(t, validInput()))
	assert.ErrorContains(t, err, "failed to insert submission")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	newer := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	older := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(submissionColumns).
		AddRow("b", "Bob", "bob@example.com", nil, "Acme", "Second", newer).
		AddRow("a", "Alice", "alice@example.com", "+44 20 71234567", nil, "First", older)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).WillReturnRows(rows)

	list, err := NewPostgresRepository(db).ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "b", list[0].ID)
	assert.Nil(t, list[0].Phone)
	require.NotNil(t, list[0].Organization)
	assert.Equal(t, "Acme", *list[0].Organization)
	assert.Equal(t, "a", list[1].ID)
	require.NotNil(t, list[1].Phone)
	assert.Nil(t, list[1].Organization)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListAllEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(submissionColumns))

	list, err := NewPostgresRepository(db).ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestPostgresRepository_ListAllError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset"))

	_, err = NewPostgresRepository(db).ListAll(context.Background())
	assert.ErrorContains(t, err, "failed to list submissions")
}

func TestMonotonicClock(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.FixedZone("X", 3600))
	c := NewMonotonicClock(func() time.Time { return fixed })

	first := c.Now()
	second := c.Now()
	third := c.Now()

	assert.Equal(t, time.UTC, first.Location())
	assert.Equal(t, fixed.UTC().Truncate(time.Millisecond), first)
	assert.Equal(t, first.Add(time.Millisecond), second)
	assert.Equal(t, second.Add(time.Millisecond), third)
}
