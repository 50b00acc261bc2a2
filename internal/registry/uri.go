package registry

import (
	"net/url"
	"strings"
	"unicode"
)

// IsWebURI reports whether s is an absolute http or https URL with a
// non-empty host and no whitespace or control characters.
func IsWebURI(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}

	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}
	return u.Hostname() != ""
}
