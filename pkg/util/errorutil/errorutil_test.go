package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	notFound := NewNotFound("service order", map[string]any{"id": "42"})
	wrapped := fmt.Errorf("lookup: %w", notFound)
	got := ToDomainError(wrapped)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, http.StatusNotFound, got.HTTPStatus)
	assert.Equal(t, "service order not found", got.Message)
	assert.Equal(t, "42", got.Details["id"])

	got = ToDomainError(fiber.ErrMethodNotAllowed)
	assert.Equal(t, "METHOD_NOT_ALLOWED", got.Code)
	assert.Equal(t, http.StatusMethodNotAllowed, got.HTTPStatus)

	got = ToDomainError(fiber.NewError(http.StatusTeapot, "teapot"))
	assert.Equal(t, "REQUEST_FAILED", got.Code)

	got = ToDomainError(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
	assert.NotContains(t, got.Message, "boom")
}

func TestNewStoreUnavailable_HidesCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:5432: connection refused")
	err := NewStoreUnavailable(cause)

	assert.ErrorIs(t, err, cause)
	domainErr := ToDomainError(err)
	assert.Equal(t, "STORE_UNAVAILABLE", domainErr.Code)
	assert.Equal(t, "storage unavailable", domainErr.Message)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
}

func TestNewNotFound_DefaultsDetails(t *testing.T) {
	domainErr := ToDomainError(NewNotFound("service order", nil))
	assert.NotNil(t, domainErr.Details)
}
