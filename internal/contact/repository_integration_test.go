//go:build integration

package contact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/internal/testinfra"
)

func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	empty, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	first, err := repo.Insert(ctx, mustValidate(t, validInput()))
	require.NoError(t, err)
	second, err := repo.Insert(ctx, mustValidate(t, SubmissionInput{
		"name":    "John Roe",
		"email":   "john@example.com",
		"message": "Second message here",
	}))
	require.NoError(t, err)

	list, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.True(t, first.CreatedAt.Equal(list[1].CreatedAt))

	require.NotNil(t, list[1].Phone)
	assert.Equal(t, "+1 555 1234567", *list[1].Phone)
	assert.Nil(t, list[0].Phone)
	assert.Nil(t, list[0].Organization)
}

func TestPostgresRepository_Integration(t *testing.T) {
	exerciseRepository(t, NewPostgresRepository(testinfra.Postgres(t)))
}

func TestMongoRepository_Integration(t *testing.T) {
	exerciseRepository(t, NewMongoRepository(testinfra.Mongo(t)))
}
