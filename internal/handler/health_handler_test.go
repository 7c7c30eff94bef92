package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func TestHealthHandler_Root(t *testing.T) {
	h := NewHealthHandler("weather-2", &mockForecastService{}, nil)

	rr := httptest.NewRecorder()
	h.HandleRoot(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Response from weather-2", decodeBody(t, rr)["message"])

	rr = httptest.NewRecorder()
	h.HandleRoot(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealthHandler_Health(t *testing.T) {
	h := NewHealthHandler("weather-2", &mockForecastService{readyErr: errors.New("down")}, nil)

	rr := httptest.NewRecorder()
	h.HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decodeBody(t, rr)["status"])
}

func TestHealthHandler_Ready(t *testing.T) {
	ready := NewHealthHandler("w", &mockForecastService{}, nil)
	rr := httptest.NewRecorder()
	ready.HandleReady(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ready", decodeBody(t, rr)["status"])

	down := NewHealthHandler("w", &mockForecastService{readyErr: errors.New("dial tcp: refused")}, nil)
	rr = httptest.NewRecorder()
	down.HandleReady(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "unavailable", decodeBody(t, rr)["status"])
}
