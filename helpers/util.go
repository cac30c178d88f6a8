package helpers

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"
)

// CacheKey builds a memcache-safe key from an arbitrary string
func CacheKey(prefix, s string) string {
	sum := sha1.Sum([]byte(s))
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// HostOf returns the lower-cased host of rawURL, or "" if it cannot be parsed
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// IsHTTPURL reports whether rawURL is an absolute http(s) URL
func IsHTTPURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
