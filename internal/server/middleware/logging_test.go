package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vkuzmenko/wardsync/internal/server/handlers"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return logger, buf
}

func TestLoggingMiddleware_LogsRequest(t *testing.T) {
	logger, buf := captureLogger()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	handler := LoggingMiddleware(logger)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	out := buf.String()
	assert.Contains(t, out, `"level":"INFO"`)
	assert.Contains(t, out, `"method":"GET"`)
	assert.Contains(t, out, `"path":"/api/v1/health"`)
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, `"bytes_written":4`)
	assert.NotContains(t, out, "device_id")
}

func TestLoggingMiddleware_IncludesDeviceID(t *testing.T) {
	logger, buf := captureLogger()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := LoggingMiddleware(logger)(next)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/push", nil)
	ctx := context.WithValue(req.Context(), handlers.DeviceIDKey, "device-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req.WithContext(ctx))

	assert.Contains(t, buf.String(), `"device_id":"device-123"`)
}

func TestLoggingMiddleware_LogLevels(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"success is info", http.StatusOK, `"level":"INFO"`},
		{"client error is warn", http.StatusForbidden, `"level":"WARN"`},
		{"server error is error", http.StatusInternalServerError, `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := captureLogger()

			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			handler := LoggingMiddleware(logger)(next)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Contains(t, buf.String(), tt.wantLevel)
		})
	}
}

func TestLoggingWithSkip(t *testing.T) {
	logger, buf := captureLogger()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := LoggingWithSkip(logger, []string{"/api/v1/health"})(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Empty(t, buf.String())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sync/pull", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Contains(t, buf.String(), `"path":"/api/v1/sync/pull"`)
}
