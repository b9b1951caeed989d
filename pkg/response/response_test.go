package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/errors"
)

func call(t *testing.T, fn func(c echo.Context) error) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, fn(e.NewContext(req, rec)))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestSuccessEnvelope(t *testing.T) {
	rec, body := call(t, func(c echo.Context) error {
		return Created(c, map[string]int{"items": 2})
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, body.Success)
	assert.Nil(t, body.Error)
	assert.NotEmpty(t, body.Timestamp)
}

func TestErrorMapsAppErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", errors.Validation("Select a size"), http.StatusBadRequest, errors.CodeValidation},
		{"not found", errors.NotFound("Product", nil), http.StatusNotFound, errors.CodeNotFound},
		{"transient", errors.TransientIO("Catalog could not be loaded", assert.AnError), http.StatusServiceUnavailable, errors.CodeTransientIO},
		{"bind", echo.NewHTTPError(http.StatusBadRequest, "bad json"), http.StatusBadRequest, errors.CodeValidation},
		{"unknown", assert.AnError, http.StatusInternalServerError, errors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := call(t, func(c echo.Context) error { return Error(c, tt.err) })
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotContains(t, body.Error.Message, assert.AnError.Error(), "causes are never leaked")
		})
	}
}

func TestErrorListsValidationFields(t *testing.T) {
	type input struct {
		Name    string `validate:"required"`
		Payment string `validate:"oneof=pix card cash"`
	}
	err := validator.New().Struct(input{Payment: "crypto"})
	require.Error(t, err)

	rec, body := call(t, func(c echo.Context) error { return Error(c, err) })
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required", body.Error.Message)
	assert.Equal(t, map[string]interface{}{
		"name":    "name is required",
		"payment": "payment must be one of: pix card cash",
	}, body.Error.Details)
}
