// AngelaMos | 2026
// tracing_test.go

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	return exporter
}

func TestTracing_NamesSpanByRoute(t *testing.T) {
	exporter := setupTestTracer(t)

	r := chi.NewRouter()
	r.Use(Tracing)
	r.Get("/housing-supplies/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, core.TraceIDFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/housing-supplies/42", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("traceparent"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /housing-supplies/{id}", spans[0].Name)
}

func TestTracing_MarksServerErrors(t *testing.T) {
	exporter := setupTestTracer(t)

	r := chi.NewRouter()
	r.Use(Tracing)
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestTracing_ContinuesInboundTrace(t *testing.T) {
	exporter := setupTestTracer(t)

	const parent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

	r := chi.NewRouter()
	r.Use(Tracing)
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("traceparent", parent)
	r.ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
}

func TestTracing_LoggerSeesTraceID(t *testing.T) {
	setupTestTracer(t)

	var traceID string
	logger := slog.New(slog.DiscardHandler)

	r := chi.NewRouter()
	r.Use(Tracing)
	r.Use(Logger(logger))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		traceID = core.TraceIDFromContext(r.Context())
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, traceID, 32)
}
