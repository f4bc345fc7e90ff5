package http

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout returns middleware enforcing a deadline on JSON API requests,
// answering 504 when the handler overruns. It must not wrap streaming
// endpoints: media proxying and feed downloads legitimately outlive any
// sane API deadline.
//
// The handler runs in its own goroutine; a mutex ensures exactly one of
// the handler and the deadline path writes the response.
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()
			r = r.WithContext(ctx)

			done := make(chan struct{})
			var mu sync.Mutex
			expired := false

			guarded := &deadlineResponseWriter{
				ResponseWriter: w,
				mu:             &mu,
				expired:        &expired,
			}

			go func() {
				next.ServeHTTP(guarded, r)
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				mu.Lock()
				expired = true
				if !guarded.wrote {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusGatewayTimeout)
					_, _ = w.Write([]byte(`{"error":"request timeout"}`))
				}
				mu.Unlock()
			}
		})
	}
}

// deadlineResponseWriter suppresses handler writes once the deadline
// response has been sent.
type deadlineResponseWriter struct {
	http.ResponseWriter
	mu      *sync.Mutex
	expired *bool
	wrote   bool
}

func (w *deadlineResponseWriter) WriteHeader(statusCode int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !*w.expired && !w.wrote {
		w.wrote = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *deadlineResponseWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if *w.expired {
		return 0, http.ErrHandlerTimeout
	}
	if !w.wrote {
		w.wrote = true
		w.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}
