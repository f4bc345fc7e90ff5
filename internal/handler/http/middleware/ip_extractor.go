package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"strings"
)

// IPExtractor extracts the client IP from a request. Implementations
// choose between the raw TCP peer address and forwarded headers behind
// a trusted reverse proxy.
type IPExtractor interface {
	ExtractIP(r *http.Request) (string, error)
}

// RemoteAddrExtractor uses the TCP peer address. Clients cannot spoof
// it, so it is the default when no reverse proxy is declared.
type RemoteAddrExtractor struct{}

// ExtractIP returns the IP portion of r.RemoteAddr, handling both
// "ip:port" and bare-IP forms for IPv4 and IPv6.
func (e *RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	return extractIPFromAddr(r.RemoteAddr)
}

// TrustedProxyConfig declares which peers are reverse proxies whose
// forwarding headers may be believed.
type TrustedProxyConfig struct {
	Enabled bool

	// AllowedCIDRs lists trusted proxy ranges. Single IPs are stored
	// as /32 or /128 prefixes.
	AllowedCIDRs []netip.Prefix
}

// IsTrusted reports whether remoteAddr falls in a trusted proxy range.
// Unparseable addresses are not trusted.
func (c *TrustedProxyConfig) IsTrusted(remoteAddr string) bool {
	ip, err := extractIPFromAddr(remoteAddr)
	if err != nil {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}

	for _, prefix := range c.AllowedCIDRs {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// LoadTrustedProxyConfig reads RATE_LIMIT_TRUST_PROXY and
// RATE_LIMIT_TRUSTED_PROXIES (comma-separated IPs or CIDR ranges).
// Misconfiguration fails closed: enabling trust without a valid proxy
// list is a startup error, not a silently open header trust.
func LoadTrustedProxyConfig() (*TrustedProxyConfig, error) {
	config := &TrustedProxyConfig{
		Enabled:      os.Getenv("RATE_LIMIT_TRUST_PROXY") == "true",
		AllowedCIDRs: []netip.Prefix{},
	}
	if !config.Enabled {
		return config, nil
	}

	proxiesStr := strings.TrimSpace(os.Getenv("RATE_LIMIT_TRUSTED_PROXIES"))
	if proxiesStr == "" {
		return nil, fmt.Errorf("RATE_LIMIT_TRUST_PROXY is enabled but RATE_LIMIT_TRUSTED_PROXIES is empty")
	}

	for _, proxyStr := range strings.Split(proxiesStr, ",") {
		proxyStr = strings.TrimSpace(proxyStr)
		if proxyStr == "" {
			continue
		}

		prefix, err := netip.ParsePrefix(proxyStr)
		if err != nil {
			ip, ipErr := netip.ParseAddr(proxyStr)
			if ipErr != nil {
				return nil, fmt.Errorf("invalid IP or CIDR %q in RATE_LIMIT_TRUSTED_PROXIES", proxyStr)
			}
			bits := 32
			if ip.Is6() {
				bits = 128
			}
			prefix = netip.PrefixFrom(ip, bits)
		}
		config.AllowedCIDRs = append(config.AllowedCIDRs, prefix)
	}

	if len(config.AllowedCIDRs) == 0 {
		return nil, fmt.Errorf("RATE_LIMIT_TRUST_PROXY is enabled but no valid proxies found in RATE_LIMIT_TRUSTED_PROXIES")
	}
	return config, nil
}

// TrustedProxyExtractor believes X-Forwarded-For (first hop) and
// X-Real-IP, but only when the direct peer is a declared proxy. An
// untrusted peer sending forwarding headers is a spoofing attempt and
// gets its RemoteAddr instead.
type TrustedProxyExtractor struct {
	config TrustedProxyConfig
}

// NewTrustedProxyExtractor creates an extractor for the given config.
func NewTrustedProxyExtractor(config TrustedProxyConfig) *TrustedProxyExtractor {
	return &TrustedProxyExtractor{config: config}
}

// ExtractIP resolves the client IP. Header order behind a trusted
// proxy: X-Forwarded-For first entry, then X-Real-IP, then RemoteAddr.
func (e *TrustedProxyExtractor) ExtractIP(r *http.Request) (string, error) {
	if !e.config.Enabled {
		return extractIPFromAddr(r.RemoteAddr)
	}

	if !e.config.IsTrusted(r.RemoteAddr) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			slog.Warn("untrusted peer sent X-Forwarded-For",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_forwarded_for", xff))
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			slog.Warn("untrusted peer sent X-Real-IP",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_real_ip", xri))
		}
		return extractIPFromAddr(r.RemoteAddr)
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip, nil
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return ip.String(), nil
		}
	}
	return extractIPFromAddr(r.RemoteAddr)
}

// extractIPFromAddr returns the IP in a "host:port" or bare address
// string.
func extractIPFromAddr(addr string) (string, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		// Bare address without a port.
		if ip := net.ParseIP(addr); ip != nil {
			return ip.String(), nil
		}
		return "", fmt.Errorf("invalid address format: %s", addr)
	}
	return host, nil
}

// parseFirstIP returns the first valid IP in an X-Forwarded-For style
// comma-separated list ("client, proxy1, proxy2"), or "".
func parseFirstIP(s string) string {
	first, _, _ := strings.Cut(s, ",")
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}
