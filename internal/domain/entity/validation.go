package entity

import (
	"fmt"
	"net"
	"net/url"
)

// maxURLLength bounds accepted URLs to keep hostile input out of the
// hash-derived id path.
const maxURLLength = 2048

// ValidateURL validates the format and safety of a URL. It checks that
// the URL is well-formed, uses an HTTP/HTTPS scheme, and has a valid
// host, and blocks hosts resolving to private networks since source and
// media URLs are fetched server-side.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}
	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}
	if parsed.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	ips, err := net.LookupIP(parsed.Hostname())
	if err == nil {
		for _, ip := range ips {
			if isRestrictedIP(ip) {
				return &ValidationError{
					Field:   "url",
					Message: "url cannot point to private network",
				}
			}
		}
	}

	return nil
}

// isRestrictedIP reports whether the address is loopback, link-local
// (which covers cloud metadata endpoints), or a private range.
func isRestrictedIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsPrivate()
}
