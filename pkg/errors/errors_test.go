package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_HTTPStatus(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{ErrInvalidIdentifier, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrDependencyNotFound, http.StatusNotFound},
		{ErrConflict, http.StatusConflict},
		{ErrInternal, http.StatusInternalServerError},
		{New(123, "odd"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, c.err.HTTPStatus(), "code=%d", c.err.Code)
	}
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	bookMissing := ErrNotFound.WithMessage("图书不存在: %s", "42")

	assert.True(t, errors.Is(bookMissing, ErrNotFound))
	assert.False(t, errors.Is(bookMissing, ErrConflict))

	wrapped := fmt.Errorf("repo: %w", bookMissing)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "图书不存在: 42", GetAppError(wrapped).Message)
}

func TestGetAppError_WrapsPlainError(t *testing.T) {
	cause := errors.New("boom")
	appErr := GetAppError(cause)

	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Error(), "boom")
}
