package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFound_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("load item: %w", NewNotFound("item", "abc"))

	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(err))

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "item", appErr.Details["entity"])
	assert.Equal(t, "abc", appErr.Details["id"])
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
	assert.False(t, IsNotFound(errors.New("boom")))
}

func TestInternal_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewDatabase("update item", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, "update item", err.Details["operation"])
}

func TestInvalidState_Message(t *testing.T) {
	err := NewInvalidState("bill", "void", "void")

	assert.Equal(t, CodeInvalidState, err.Code)
	assert.Equal(t, "cannot void bill in status void", err.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
}
