package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToErrorResponse_Validation(t *testing.T) {
	fieldErrors := []map[string]string{{"field": "email", "message": "Invalid email address"}}
	err := ErrValidation.WithDetail(DetailErrors, fieldErrors)

	resp := ToErrorResponse(err)
	assert.Equal(t, "Validation failed", resp["error"])
	assert.Equal(t, fieldErrors, resp["errors"])
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(err))
}

func TestToErrorResponse_HidesInternalCause(t *testing.T) {
	err := ErrSinkFailure.WithCause(fmt.Errorf("dial tcp 10.0.0.1:5432: connection refused"))

	resp := ToErrorResponse(err)
	assert.Equal(t, "Internal server error. Please try again later.", resp["error"])
	assert.NotContains(t, resp, "errors")
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(err))
}

func TestToErrorResponse_ForeignError(t *testing.T) {
	resp := ToErrorResponse(stderrors.New("boom"))
	assert.Equal(t, ErrInternal.Message, resp["error"])
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(stderrors.New("boom")))
}

func TestIs_MatchesCopies(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", ErrRateLimited.WithDetail("retry_after", 30))
	assert.True(t, stderrors.Is(wrapped, ErrRateLimited))
	assert.False(t, IsValidation(wrapped))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, ErrValidation.IsFatal())
	assert.True(t, ErrMalformedRequest.WithCause(stderrors.New("eof")).IsFatal())
	assert.False(t, ErrSinkFailure.IsFatal())
	assert.True(t, ErrSinkFailure.AsFatal().IsFatal())
	assert.False(t, ErrSinkFailure.IsFatal())
}

func TestWithDetail_DoesNotMutateSentinel(t *testing.T) {
	_ = ErrValidation.WithDetail(DetailErrors, "x")
	assert.Empty(t, ErrValidation.Details)
}

func TestRecoverPanic(t *testing.T) {
	assert.NoError(t, RecoverPanic(nil))

	err := RecoverPanic("sink exploded")
	require.Error(t, err)

	var appErr *Error
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, true, appErr.Details["panic"])
	assert.True(t, appErr.IsFatal())
	assert.Contains(t, err.Error(), "sink exploded")

	wrapped := RecoverPanic(stderrors.New("nil map write"))
	assert.Contains(t, wrapped.Error(), "nil map write")
}
