package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "users-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapSuccess(t *testing.T) {
	env := WrapSuccess(map[string]bool{"success": true})

	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	assert.Equal(t, map[string]bool{"success": true}, env.Data)
}

func TestWrapError_AppError(t *testing.T) {
	env := WrapError(apperrors.NewNotFoundError("user"))

	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, "user not found", env.Error.Message)
}

func TestWrapError_PrefersExplicitCode(t *testing.T) {
	err := apperrors.NewDatabaseError("scan", errors.New("x")).WithCode(apperrors.CodeThrottled)

	env := WrapError(err)

	assert.Equal(t, apperrors.CodeThrottled, env.Error.Code)
}

func TestWrapError_PlainErrorIsHidden(t *testing.T) {
	env := WrapError(errors.New("connection string leaked"))

	assert.Equal(t, StandardErrorCodes.InternalError, env.Error.Code)
	assert.NotContains(t, env.Error.Message, "leaked")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(apperrors.NewValidationError("x")))
	assert.Equal(t, http.StatusBadGateway, StatusFor(apperrors.NewExternalError("blob-store", nil)))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("x")))
}

func TestRespondEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondEnvelope(rec, http.StatusCreated, WrapSuccess("ok"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "ok", body.Data)
}

func TestParseJSONBody_RejectsUnknownFields(t *testing.T) {
	type payload struct {
		UserID string `json:"userId"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"userId":"a","extra":1}`))
	var p payload
	err := ParseJSONBody(req, &p, 1024)
	assert.Error(t, err)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"userId":"a"}`))
	require.NoError(t, ParseJSONBody(req, &p, 1024))
	assert.Equal(t, "a", p.UserID)
}
