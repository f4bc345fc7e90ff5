package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware_PathNormalization(t *testing.T) {
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/videos/:id", "200"))

	// Two different ids must land on the same label
	for _, path := range []string{"/videos/4be91f22", "/videos/0f7c3a9b"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/videos/:id", "200"))
	if after-before != 2 {
		t.Errorf("got %v increments for /videos/:id, want 2", after-before)
	}
}

func TestMetricsMiddleware_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "created", status: http.StatusCreated},
		{name: "not found", status: http.StatusNotFound},
		{name: "conflict", status: http.StatusConflict},
		{name: "server error", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			req := httptest.NewRequest(http.MethodPost, "/sources", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Errorf("got status %d, want %d", rr.Code, tt.status)
			}
		})
	}
}

func TestMetricsMiddleware_DefaultStatusIsOK(t *testing.T) {
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Write without an explicit WriteHeader
		_, _ = w.Write([]byte("body"))
	}))

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/sources", "200"))

	req := httptest.NewRequest(http.MethodGet, "/sources", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/sources", "200"))
	if after-before != 1 {
		t.Errorf("got %v increments, want 1", after-before)
	}
}

func TestResponseWriter(t *testing.T) {
	rr := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rr, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusAccepted)
	n, err := rw.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 || rw.size != 5 {
		t.Errorf("got n=%d size=%d, want 5/5", n, rw.size)
	}
	if rw.statusCode != http.StatusAccepted {
		t.Errorf("got status %d, want %d", rw.statusCode, http.StatusAccepted)
	}
}

func TestMetricsHandler(t *testing.T) {
	// Generate at least one sample first
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/sources", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rr, metricsReq)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "http_requests_total") {
		t.Error("metrics output missing http_requests_total")
	}
}
