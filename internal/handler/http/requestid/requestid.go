// Package requestid assigns each request a unique id for correlating
// log lines across the request's lifetime.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// headerName is the inbound and outbound request id header.
const headerName = "X-Request-ID"

// maxInboundIDLength caps accepted client-supplied ids. Longer values
// are replaced rather than truncated.
const maxInboundIDLength = 128

type contextKey struct{}

// FromContext returns the request id stored in ctx, or "".
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID returns a context carrying the given request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Middleware propagates an inbound X-Request-ID or generates a UUID v4,
// stores it in the request context and echoes it on the response so
// clients can reference it in reports.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerName)
		if id == "" || len(id) > maxInboundIDLength {
			id = uuid.New().String()
		}

		w.Header().Set(headerName, id)

		ctx := WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
