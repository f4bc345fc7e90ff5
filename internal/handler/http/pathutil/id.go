// Package pathutil provides helpers for working with URL paths: route
// parameter extraction and path normalization for metrics labels.
package pathutil

import (
	"errors"
	"strings"
)

// ErrInvalidID is returned when the ID segment in the URL path is invalid.
var ErrInvalidID = errors.New("invalid id")

// maxIDLength bounds the accepted id segment. Source and video ids are
// 32-char hex digests, filter and criteria ids are 36-char UUIDs.
const maxIDLength = 64

// ExtractID extracts an opaque string ID from a URL path after removing
// the given prefix. The remainder must be a single non-empty path
// segment made of URL-safe identifier characters.
//
// Example:
//
//	id, err := ExtractID("/sources/0f7c3a9b", "/sources/")
//	// Returns: "0f7c3a9b", nil
func ExtractID(path, prefix string) (string, error) {
	id := strings.TrimPrefix(path, prefix)
	id = strings.TrimSuffix(id, "/")
	if id == "" || len(id) > maxIDLength {
		return "", ErrInvalidID
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return "", ErrInvalidID
		}
	}
	return id, nil
}

// ExtractIDAndSuffix splits "<id>/<suffix>" after the prefix, for routes
// like /sources/{id}/fetch. The suffix must match exactly.
func ExtractIDAndSuffix(path, prefix, suffix string) (string, error) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.TrimSuffix(rest, "/")
	id, ok := strings.CutSuffix(rest, "/"+suffix)
	if !ok {
		return "", ErrInvalidID
	}
	return ExtractID(id, "")
}
