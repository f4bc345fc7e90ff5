package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found.
	// A missing record during a refresh is a store desync and must be
	// propagated, never silently skipped.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists signals an idempotent create hitting an existing
	// record. Non-fatal: callers treat it as a duplicate, not a failure.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrFormatNotFound indicates that the extractor returned no media
	// format matching the handler's format selector.
	ErrFormatNotFound = errors.New("media format not found")
)

// FetchCanceledError is the expected/transient outcome of a fetch unit.
// It is absorbed at the smallest scope (per video, per source) and never
// aborts the surrounding batch.
type FetchCanceledError struct {
	Reason string
}

func (e *FetchCanceledError) Error() string {
	return fmt.Sprintf("fetch canceled: %s", e.Reason)
}

// FetchVideoError is a terminal per-video failure: the item is reported
// and propagated, but siblings in the batch keep going.
type FetchVideoError struct {
	VideoID string
	Err     error
}

func (e *FetchVideoError) Error() string {
	return fmt.Sprintf("fetch video %s: %v", e.VideoID, e.Err)
}

func (e *FetchVideoError) Unwrap() error { return e.Err }

// FetchSourceError is a terminal per-source failure, raised when the
// upstream account or channel is permanently gone.
type FetchSourceError struct {
	SourceID string
	Err      error
}

func (e *FetchSourceError) Error() string {
	return fmt.Sprintf("fetch source %s: %v", e.SourceID, e.Err)
}

func (e *FetchSourceError) Unwrap() error { return e.Err }

// ValidationError represents a validation error with detailed field information.
// Invalid Criteria combinations are rejected with this error at construction,
// never evaluated.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
