package telemetry

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/phrazzld/tasks-api/internal/config"
)

func TestWrapHandlerStartsSpans(t *testing.T) {
	var out bytes.Buffer
	tp, err := InitTracerProvider(context.Background(),
		config.TelemetryConfig{ServiceName: "tasks-api-test", TraceStdout: true}, "test", &out)
	require.NoError(t, err)

	var traced, untraced bool
	h := WrapHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		valid := trace.SpanContextFromContext(r.Context()).IsValid()
		if r.URL.Path == "/health" {
			untraced = !valid
		} else {
			traced = valid
		}
		w.WriteHeader(http.StatusNoContent)
	}), "test-server")

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	require.NoError(t, tp.Shutdown(context.Background()))

	assert.True(t, traced, "api requests carry a span")
	assert.True(t, untraced, "health checks are not traced")
	assert.Contains(t, out.String(), "tasks-api-test")
}
