// Package analytics extracts click metadata from redirect requests.
package analytics

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/mssola/useragent"
)

const maxMetaLength = 500

// RequestMeta is the raw request metadata captured on a redirect.
type RequestMeta struct {
	IP        string
	UserAgent string
	Referrer  string
}

// FromRequest captures click metadata from an incoming redirect request.
func FromRequest(r *http.Request) RequestMeta {
	return RequestMeta{
		IP:        ClientIP(r),
		UserAgent: TruncateUserAgent(r.Header.Get("User-Agent")),
		Referrer:  SanitizeReferrer(r.Header.Get("Referer")),
	}
}

// ClientIP extracts the client IP address from the request.
// Prefers the first entry of X-Forwarded-For, falls back to the socket
// address, and normalizes IPv6-mapped IPv4 addresses.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := xff
		if i := strings.IndexByte(xff, ','); i >= 0 {
			first = xff[:i]
		}
		return NormalizeIP(strings.TrimSpace(first))
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return NormalizeIP(strings.TrimSpace(ip))
	}

	return NormalizeIP(r.RemoteAddr)
}

// NormalizeIP strips a port suffix when present and rewrites IPv6-mapped
// IPv4 addresses (::ffff:1.2.3.4) to plain dotted form.
func NormalizeIP(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	addr = strings.Trim(addr, "[]")

	parsed := net.ParseIP(addr)
	if parsed == nil {
		return addr
	}
	if v4 := parsed.To4(); v4 != nil {
		return v4.String()
	}
	return parsed.String()
}

// SanitizeReferrer cleans and truncates the referrer URL.
// Strips query parameters and fragments for privacy.
func SanitizeReferrer(ref string) string {
	if ref == "" {
		return ""
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""

	sanitized := parsed.String()
	if len(sanitized) > maxMetaLength {
		return sanitized[:maxMetaLength]
	}
	return sanitized
}

// TruncateUserAgent truncates a user agent to the stored maximum.
func TruncateUserAgent(ua string) string {
	if len(ua) > maxMetaLength {
		return ua[:maxMetaLength]
	}
	return ua
}

// ParseUserAgent derives browser, OS, and device class from a raw UA string.
func ParseUserAgent(raw string) (browser, os, device string) {
	if raw == "" {
		return "Unknown", "Unknown", "Unknown"
	}

	ua := useragent.New(raw)
	browser, _ = ua.Browser()
	if browser == "" {
		browser = "Unknown"
	}
	os = ua.OS()
	if os == "" {
		os = "Unknown"
	}

	switch {
	case ua.Bot():
		device = "Bot"
	case ua.Mobile():
		device = "Mobile"
	default:
		device = "Desktop"
	}

	return browser, os, device
}
