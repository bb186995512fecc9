// Package middleware provides the HTTP middleware stack: trace ID
// injection and JWT authentication.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mlowery/tasktrack-api/internal/api/shared"
	"github.com/mlowery/tasktrack-api/internal/platform/logger"
)

// TraceID assigns every request a trace ID and stores a logger carrying
// it in the context, so downstream logs and error responses correlate.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())

		log := logger.FromContext(ctx).With(
			slog.String("trace_id", shared.GetTraceID(ctx)))
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
