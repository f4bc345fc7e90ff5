package extractor

import (
	"errors"
	"strings"
)

// Sentinel errors classifying upstream extraction failures. The fetch
// orchestrator maps these onto the domain error taxonomy.
var (
	// ErrSourceGone means the account or channel is permanently gone.
	ErrSourceGone = errors.New("source permanently gone")

	// ErrVideoUnavailable means the video is unavailable, private,
	// deleted, delisted (410), or a not-yet-started live event.
	ErrVideoUnavailable = errors.New("video unavailable")
)

// markers of permanently-gone accounts/channels in upstream messages.
var goneMarkers = []string{
	"account terminated",
	"account has been terminated",
	"channel does not exist",
	"this channel was removed",
	"user not found",
	"404",
}

// markers of per-video unavailability in upstream messages.
var unavailableMarkers = []string{
	"video unavailable",
	"private video",
	"video has been removed",
	"deleted video",
	"410",
	"gone",
	"live event",
	"premieres in",
	"not yet available",
}

// classify converts an upstream error payload into a sentinel error.
// Unrecognized messages come back verbatim as opaque errors.
func classify(message string) error {
	lower := strings.ToLower(message)
	for _, marker := range goneMarkers {
		if strings.Contains(lower, marker) {
			return ErrSourceGone
		}
	}
	for _, marker := range unavailableMarkers {
		if strings.Contains(lower, marker) {
			return ErrVideoUnavailable
		}
	}
	return errors.New(message)
}
