package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func TestMiddlewareChainCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := jsonLogger(&buf, ComponentHTTP)

	var seen *Logger
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		seen.InfoContext(r.Context(), "inside handler")
		AccessLog(r.Context(), seen, r.Method, r.URL.Path, http.StatusNoContent, 3)
	})
	chain := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req_fixed" })(handler))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	chain.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, ComponentHTTP, seen.Component())

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, "req_fixed", line[FieldRequestID])
		assert.Equal(t, ComponentHTTP, line[FieldComponent])
	}
	assert.Equal(t, "HTTP request completed", lines[1]["msg"])
	assert.Equal(t, "INFO", lines[1]["level"])
}

func TestAccessLogLevelFollowsStatus(t *testing.T) {
	cases := map[int]string{
		http.StatusOK:                  "INFO",
		http.StatusUnprocessableEntity: "WARN",
		http.StatusInternalServerError: "ERROR",
	}
	for status, want := range cases {
		var buf bytes.Buffer
		AccessLog(context.Background(), jsonLogger(&buf, ComponentHTTP), http.MethodPost, "/sales", status, 1)
		lines := decodeLines(t, &buf)
		require.Len(t, lines, 1)
		assert.Equal(t, want, lines[0]["level"], "status %d", status)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.Equal(t, "unknown", logger.Component())
}
