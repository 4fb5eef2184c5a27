package utils

import (
	"net/url"
	"slices"
	"strings"
)

// IsCheckableURL reports whether rawURL is an absolute URL with a host and
// one of the given schemes.
func IsCheckableURL(rawURL string, schemes []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return false
	}
	if u.Host == "" {
		return false
	}
	return slices.Contains(schemes, strings.ToLower(u.Scheme))
}
