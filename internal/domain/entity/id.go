package entity

import (
	"crypto/sha256"
	"encoding/hex"
)

// idLength is the number of hex characters kept from the URL digest.
// 128 bits is plenty to keep collisions out of reach while keeping ids
// readable in logs and feed paths.
const idLength = 32

// DeriveID returns the deterministic identity for a sanitized URL.
// The same external source or video always maps to the same row, so
// callers must sanitize first: DeriveID(sanitize(u)) is the canonical
// key, and sanitize must be idempotent for re-derivation to be stable.
func DeriveID(sanitizedURL string) string {
	sum := sha256.Sum256([]byte(sanitizedURL))
	return hex.EncodeToString(sum[:])[:idLength]
}
