package httputil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondJSON(rec, map[string]string{"message": "ok"}, 201)

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["message"])
}

func TestRespondJSON_UnencodablePayload(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondJSON(rec, func() {}, 200)

	assert.Equal(t, 500, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeInternalError, body.Code)
}

func TestRespondErrorWithCode(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondErrorWithCode(rec, "email already exists", CodeEmailAlreadyExists, 409)

	assert.Equal(t, 409, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "email already exists", body.Error)
	assert.Equal(t, CodeEmailAlreadyExists, body.Code)
}
