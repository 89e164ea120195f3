// Package netguard blocks outbound requests to localhost and private
// networks (SSRF protection). Every user-supplied URL the service fetches
// must pass CheckURL first.
package netguard

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
)

var localhostNames = map[string]struct{}{
	"localhost": {},
	"127.0.0.1": {},
	"::1":       {},
	"0.0.0.0":   {},
	"local":     {},
}

// IsPrivateIP reports whether an IP literal is private, loopback,
// link-local or otherwise reserved. Unparseable input counts as private:
// when in doubt, block.
func IsPrivateIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return true
	}
	return addr.IsPrivate() ||
		addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified() ||
		addr.IsMulticast() ||
		!addr.IsValid()
}

// IsLocalhostHostname reports whether a hostname refers to the local
// machine by name.
func IsLocalhostHostname(hostname string) bool {
	lower := strings.ToLower(hostname)
	if _, ok := localhostNames[lower]; ok {
		return true
	}
	return strings.HasSuffix(lower, ".local") || strings.HasSuffix(lower, ".localhost")
}

// CheckURL validates that a URL does not point at localhost or a private
// network. Returns an error describing why the URL is blocked, nil if it
// is safe to fetch.
func CheckURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("URL validation failed: %w", err)
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return fmt.Errorf("invalid URL: missing hostname")
	}

	if IsLocalhostHostname(hostname) {
		return fmt.Errorf("access to localhost is not allowed")
	}

	if addr, err := netip.ParseAddr(hostname); err == nil {
		if IsPrivateIP(addr.String()) {
			return fmt.Errorf("access to private IP addresses is not allowed")
		}
		return nil
	}

	// Not an IP literal. Still reject hostnames that spell out a private
	// range, which catches sloppy DNS tricks without a resolver round trip.
	if hasPrivatePrefix(hostname) {
		return fmt.Errorf("access to private network addresses is not allowed")
	}

	return nil
}

func hasPrivatePrefix(hostname string) bool {
	if strings.HasPrefix(hostname, "10.") || strings.HasPrefix(hostname, "192.168.") {
		return true
	}
	for i := 16; i <= 31; i++ {
		if strings.HasPrefix(hostname, fmt.Sprintf("172.%d.", i)) {
			return true
		}
	}
	return false
}
