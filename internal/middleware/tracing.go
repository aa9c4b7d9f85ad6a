// AngelaMos | 2026
// tracing.go

package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

// Tracing opens a server span per request. It must run outside Logger so
// the request log carries the trace id.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := core.StartServerSpan(r.Context(), r.Header, r.Method+" "+r.URL.Path,
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.RequestURI()),
			attribute.String("http.user_agent", r.UserAgent()),
			attribute.String("http.client_ip", ClientIP(r)),
		)
		defer span.End()

		core.InjectTraceContext(ctx, w.Header())

		rec := newResponseRecorder(w)
		next.ServeHTTP(rec, r.WithContext(ctx))

		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				span.SetName(r.Method + " " + pattern)
				span.SetAttributes(attribute.String("http.route", pattern))
			}
		}

		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
	})
}
