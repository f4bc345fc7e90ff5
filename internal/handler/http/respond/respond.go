// Package respond writes JSON responses and keeps internal error
// detail out of user-facing bodies.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already out; logging is all that's left.
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// safeSubstrings marks error messages that originate from input
// validation and entity lookups. Anything else is treated as internal.
var safeSubstrings = []string{
	"required",
	"invalid",
	"not found",
	"already exists",
	"must be",
	"cannot be",
	"too long",
	"too short",
	"unknown",
	"not allowed",
	"unsupported",
}

// SafeError writes err as a JSON error body when it is safe to show a
// user, and a generic "internal server error" otherwise. 5xx codes are
// always generic; the real error is logged with secrets masked.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	safe := code < 500 && containsSafeSubstring(msg)

	if !safe {
		slog.Default().Error("internal server error",
			slog.String("status", http.StatusText(code)),
			slog.Int("code", code),
			slog.String("error", SanitizeError(err)))
		JSON(w, code, map[string]string{"error": "internal server error"})
		return
	}
	JSON(w, code, map[string]string{"error": msg})
}

func containsSafeSubstring(msg string) bool {
	lower := strings.ToLower(msg)
	for _, s := range safeSubstrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
