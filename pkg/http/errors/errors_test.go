package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondValidationError(rec, ErrCodeMissingField, "limit is required", "limit")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeMissingField, body.Error)
	assert.Equal(t, "limit", body.Field)
	assert.Nil(t, body.Details)
}

func TestRespondConflict(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondConflict(rec, ErrCodeSessionBusy, "busy")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"session_busy","message":"busy"}`, rec.Body.String())
}
