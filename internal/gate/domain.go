package gate

import (
	"net/url"
	"strings"
)

// Host extracts the lowercased host from a URL, tolerating missing schemes
// and other malformed forms. An unparseable URL yields "".
func Host(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// DomainAllowed reports whether a URL's host is on the allowlist: exactly
// localhost or 127.0.0.1, or any subdomain of localhost. Comparison is
// case-insensitive. Look-alikes (localhost.evil.com, fake-localhost.com)
// and anything unparseable are denied. A parse failure is a deny, never
// a crash.
func DomainAllowed(rawURL string) bool {
	s := strings.TrimSpace(rawURL)
	if s == "" || strings.HasSuffix(s, ":") || strings.HasPrefix(s, "://") {
		return false
	}
	if s == "http://" || s == "https://" {
		return false
	}

	host := Host(s)
	if host == "" {
		return false
	}
	if host == "localhost" || host == "127.0.0.1" {
		return true
	}
	return strings.HasSuffix(host, ".localhost")
}
