package normalize

import (
	"regexp"
	"strings"
)

var multiSpace = regexp.MustCompile(`\s+`)

// NormalizeName lowercases, collapses whitespace, and trims the input.
// "Acme Clinic", "acme  clinic" and " ACME CLINIC " all normalize to
// "acme clinic".
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	return multiSpace.ReplaceAllString(s, " ")
}

// CacheKey joins a namespace and its context parts into a lookup key.
// Name-like parts must already be normalized.
func CacheKey(namespace string, parts ...string) string {
	return namespace + ":" + strings.Join(parts, "|")
}
