package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// id matches a single opaque id segment: hex digests for sources and
// videos, UUIDs for filters and criteria.
const id = `[0-9a-zA-Z_-]+`

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Pre-compiled at initialization.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/sources/` + id + `/fetch$`), Template: "/sources/:id/fetch"},
	{Pattern: regexp.MustCompile(`^/sources/` + id + `/videos$`), Template: "/sources/:id/videos"},
	{Pattern: regexp.MustCompile(`^/sources/` + id + `/filters$`), Template: "/sources/:id/filters"},
	{Pattern: regexp.MustCompile(`^/sources/` + id + `$`), Template: "/sources/:id"},

	{Pattern: regexp.MustCompile(`^/videos/` + id + `/refresh$`), Template: "/videos/:id/refresh"},
	{Pattern: regexp.MustCompile(`^/videos/` + id + `$`), Template: "/videos/:id"},

	{Pattern: regexp.MustCompile(`^/filters/` + id + `/criteria/` + id + `$`), Template: "/filters/:id/criteria/:criteria_id"},
	{Pattern: regexp.MustCompile(`^/filters/` + id + `/criteria$`), Template: "/filters/:id/criteria"},
	{Pattern: regexp.MustCompile(`^/filters/` + id + `/videos$`), Template: "/filters/:id/videos"},
	{Pattern: regexp.MustCompile(`^/filters/` + id + `$`), Template: "/filters/:id"},

	{Pattern: regexp.MustCompile(`^/media/` + id + `$`), Template: "/media/:id"},

	{Pattern: regexp.MustCompile(`^/feeds/` + id + `/` + id + `\.xml$`), Template: "/feeds/:source_id/:filter_id.xml"},
	{Pattern: regexp.MustCompile(`^/feeds/` + id + `\.xml$`), Template: "/feeds/:source_id.xml"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label
// cardinality explosion. It converts paths with ids (e.g., /videos/4be91f)
// to template format (e.g., /videos/:id). Static paths remain unchanged.
//
// Query parameters and trailing slashes are stripped before matching.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	// Static paths like /healthz, /metrics and /sources pass through
	// unchanged.
	return path
}
