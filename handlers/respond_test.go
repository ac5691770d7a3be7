package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"momentumAPI/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	respondWithJSON(rec, http.StatusCreated, map[string]string{"message": "ok"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["message"])
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	respondWithError(rec, http.StatusBadRequest, "Invalid request body")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestRespondWithServiceError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{services.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: date is required", services.ErrInvalidArgument), http.StatusBadRequest},
		{services.ErrConflict, http.StatusConflict},
		{fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		respondWithServiceError(rec, tc.err)
		assert.Equal(t, tc.code, rec.Code, "error %v", tc.err)
	}
}
