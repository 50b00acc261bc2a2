package analyzer

import (
	"net"
	"net/url"
	"strings"
)

// defaultPorts are omitted from an origin.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// AddressWithoutFragment returns origin + path + query of rawURL, the way
// a browser serializes it: lower-case scheme and host, default port
// dropped, an empty path written as "/" and the query only when non-empty.
func AddressWithoutFragment(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	switch port := u.Port(); {
	case port != "" && port != defaultPorts[scheme]:
		host = net.JoinHostPort(host, port)
	case strings.Contains(host, ":"):
		host = "[" + host + "]"
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	var sb strings.Builder
	sb.WriteString(scheme)
	sb.WriteString("://")
	sb.WriteString(host)
	sb.WriteString(path)
	if u.RawQuery != "" {
		sb.WriteByte('?')
		sb.WriteString(u.RawQuery)
	}
	return sb.String(), true
}
