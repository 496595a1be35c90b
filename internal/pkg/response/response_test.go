package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "admin-console/internal/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{xerrors.ErrSessionExpired, http.StatusUnauthorized},
		{&xerrors.APIError{Kind: xerrors.ErrUnauthorized, Status: 401}, http.StatusUnauthorized},
		{fmt.Errorf("mount: %w", xerrors.ErrForbidden), http.StatusForbidden},
		{xerrors.ErrUnknownResource, http.StatusNotFound},
		{xerrors.ErrDuplicateSubmission, http.StatusConflict},
		{&xerrors.APIError{Kind: xerrors.ErrValidation, Status: 422}, http.StatusUnprocessableEntity},
		{xerrors.ErrInvalidInput, http.StatusBadRequest},
		{&xerrors.APIError{Kind: xerrors.ErrNetwork}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), "%v", tt.err)
	}
}

func TestFromError_CarriesFieldErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	FromError(c, "update failed", &xerrors.APIError{
		Kind:   xerrors.ErrValidation,
		Status: http.StatusUnprocessableEntity,
		Fields: []xerrors.FieldError{{Field: "email", Message: "is taken"}},
	})

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Success bool `json:"success"`
		Message string
		Data    struct {
			Fields []xerrors.FieldError `json:"fields"`
		}
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "update failed", body.Message)
	assert.Equal(t, []xerrors.FieldError{{Field: "email", Message: "is taken"}}, body.Data.Fields)
}
