package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPinger is a Pinger returning a fixed error.
type stubPinger struct {
	err   error
	calls int
}

func (s *stubPinger) Ping(ctx context.Context) error {
	s.calls++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("ping without deadline")
	}
	return s.err
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthHandler_Health(t *testing.T) {
	handler := NewHealthHandler(nil, "test", false)
	router := gin.New()
	router.GET("/health", handler.Health)

	w := serve(router, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	var response HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, HealthResponse{Status: "healthy"}, response)
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name           string
		db             Pinger
		expectedStatus int
		expectedBody   ReadyResponse
	}{
		{
			name:           "database connected",
			db:             &stubPinger{},
			expectedStatus: http.StatusOK,
			expectedBody:   ReadyResponse{Status: "ready", Database: "connected"},
		},
		{
			name:           "database unreachable",
			db:             &stubPinger{err: errors.New("dial tcp: connection refused")},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   ReadyResponse{Status: "not_ready", Database: "disconnected"},
		},
		{
			name:           "no database configured",
			db:             nil,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   ReadyResponse{Status: "not_ready", Database: "unconfigured"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.db, "test", false)
			router := gin.New()
			router.GET("/health/ready", handler.Ready)

			w := serve(router, http.MethodGet, "/health/ready")

			assert.Equal(t, tt.expectedStatus, w.Code)
			var response ReadyResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.expectedBody, response)
		})
	}
}

func TestHealthHandler_Info(t *testing.T) {
	handler := NewHealthHandler(nil, "production", true)
	handler.startTime = time.Now().Add(-26 * time.Hour)
	router := gin.New()
	router.GET("/api/v1/info", handler.Info)

	w := serve(router, http.MethodGet, "/api/v1/info")

	assert.Equal(t, http.StatusOK, w.Code)
	var response InfoResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, ServiceName, response.Service)
	assert.Equal(t, APIVersion, response.Version)
	assert.Equal(t, "production", response.Environment)
	assert.Contains(t, response.Uptime, "1d 2h")
	assert.True(t, response.AIExtraction)
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"formats seconds only", 45 * time.Second, "0h 0m 45s"},
		{"formats minutes and seconds", 5*time.Minute + 30*time.Second, "0h 5m 30s"},
		{"formats hours, minutes and seconds", 2*time.Hour + 15*time.Minute + 45*time.Second, "2h 15m 45s"},
		{"formats days", 3*24*time.Hour + 5*time.Hour + 30*time.Minute + 15*time.Second, "3d 5h 30m 15s"},
		{"formats exactly one day", 24 * time.Hour, "1d 0h 0m 0s"},
		{"formats zero duration", 0, "0h 0m 0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatUptime(tt.duration))
		})
	}
}

func TestInfoResponse_JSON(t *testing.T) {
	response := InfoResponse{
		Service:     ServiceName,
		Version:     "0.1.0",
		Environment: "test",
		Uptime:      "1h 30m 45s",
	}

	data, err := json.Marshal(response)
	require.NoError(t, err)

	expected := `{"service":"roofquote-pricing","version":"0.1.0","environment":"test","uptime":"1h 30m 45s","aiExtraction":false}`
	assert.JSONEq(t, expected, string(data))
}
