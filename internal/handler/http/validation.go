package http

import (
	"net/http"
)

const (
	// maxPathLength bounds the request path. Source and video ids are
	// short hashes, so anything near this limit is garbage.
	maxPathLength = 2048

	// maxRangeLength bounds the Range header on media requests. A
	// single byte range fits in well under a hundred bytes.
	maxRangeLength = 256
)

// ValidateRequest returns middleware rejecting structurally abusive
// requests before they reach a handler: oversized paths and oversized
// Range headers.
func ValidateRequest() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > maxPathLength {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestURITooLong)
				_, _ = w.Write([]byte(`{"error":"URI too long"}`))
				return
			}

			if len(r.Header.Get("Range")) > maxRangeLength {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"range header too large"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
