package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequest(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := ValidateRequest()(next)

	tests := []struct {
		name       string
		path       string
		rangeHdr   string
		wantStatus int
	}{
		{
			name:       "normal request passes",
			path:       "/videos/0a1b2c3d4e5f60718293a4b5c6d7e8f9",
			wantStatus: http.StatusOK,
		},
		{
			name:       "normal range request passes",
			path:       "/media/0a1b2c3d4e5f60718293a4b5c6d7e8f9",
			rangeHdr:   "bytes=0-1023",
			wantStatus: http.StatusOK,
		},
		{
			name:       "oversized path rejected",
			path:       "/videos/" + strings.Repeat("a", 2100),
			wantStatus: http.StatusRequestURITooLong,
		},
		{
			name:       "oversized range header rejected",
			path:       "/media/0a1b2c3d4e5f60718293a4b5c6d7e8f9",
			rangeHdr:   "bytes=" + strings.Repeat("0-1,", 100),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.rangeHdr != "" {
				req.Header.Set("Range", tt.rangeHdr)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
