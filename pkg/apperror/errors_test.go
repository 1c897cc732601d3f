package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAppError(t *testing.T) {
	notFound := NewNotFoundError("Invoice")
	wrapped := fmt.Errorf("loading: %w", notFound)

	assert.True(t, IsAppError(wrapped))
	assert.Same(t, notFound, GetAppError(wrapped))

	cause := errors.New("connection refused")
	internal := GetAppError(cause)
	assert.Equal(t, http.StatusInternalServerError, internal.Code)
	assert.Equal(t, "Internal server error", internal.Message)
	assert.ErrorIs(t, internal, cause)
	assert.Nil(t, ErrInternalServer.Err, "shared errors are never mutated")
}

func TestWithDataAndWrap(t *testing.T) {
	cause := errors.New("limit")
	err := NewForbiddenError("Invoice limit reached").WithData(map[string]int{"limit": 5}).Wrap(cause)

	assert.Equal(t, http.StatusForbidden, err.Code)
	assert.Equal(t, map[string]int{"limit": 5}, err.Data)
	assert.ErrorIs(t, err, cause)
}

func TestValidationHelpers(t *testing.T) {
	err := NewFieldError("tax_rate_percent", "Unsupported tax rate")
	assert.Equal(t, http.StatusUnprocessableEntity, err.Code)
	assert.Equal(t, []FieldError{{Field: "tax_rate_percent", Message: "Unsupported tax rate"}}, err.Errors)
	assert.Equal(t, http.StatusUnprocessableEntity, NewUnprocessableError("x").Code)
	assert.Equal(t, http.StatusConflict, NewConflictError("x").Code)
}
