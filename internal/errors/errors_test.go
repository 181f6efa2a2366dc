package errors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAPIError tests construction and the error interface.
func TestAPIError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", err.ErrorCode)
}

// TestAPIErrorRender verifies the rendered status code and envelope.
func TestAPIErrorRender(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/companies/NOPE", nil)

	require.NoError(t, render.Render(w, r, NewErrorResponse(CompanyNotFoundError("NOPE"))))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "COMPANY_NOT_FOUND")
	assert.Contains(t, w.Body.String(), "NOPE")
	assert.Contains(t, w.Body.String(), `"success":false`)
}

// TestHelperConstructors tests the detail-carrying helpers.
func TestHelperConstructors(t *testing.T) {
	t.Run("ErrValidation", func(t *testing.T) {
		err := ErrValidation("ticker", "must not be empty")
		assert.Equal(t, http.StatusBadRequest, err.StatusCode)
		detail, ok := err.Details.(ValidationError)
		require.True(t, ok)
		assert.Equal(t, "ticker", detail.Field)
	})

	t.Run("NotFoundError", func(t *testing.T) {
		err := NotFoundError("snapshot")
		assert.Equal(t, http.StatusNotFound, err.StatusCode)
		assert.Equal(t, "snapshot not found", err.Message)
	})

	t.Run("ErrPanic", func(t *testing.T) {
		err := ErrPanic("boom")
		assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
		assert.Equal(t, "boom", err.Details)
	})
}
