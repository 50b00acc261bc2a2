package fetcher

// Default browser identity sent by both fetch modes.
const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
)

// Identity is the synthetic browser identity presented to servers.
// Static and rendered fetches share it so that servers which vary content
// by client see the same client in both modes.
type Identity struct {
	UserAgent      string
	AcceptLanguage string
}

// DefaultIdentity returns the identity of a desktop Chrome browser.
func DefaultIdentity() Identity {
	return Identity{
		UserAgent:      DefaultUserAgent,
		AcceptLanguage: DefaultAcceptLanguage,
	}
}

// Headers returns the identity as request headers.
func (i Identity) Headers() map[string]string {
	h := make(map[string]string, 2)
	if i.UserAgent != "" {
		h["User-Agent"] = i.UserAgent
	}
	if i.AcceptLanguage != "" {
		h["Accept-Language"] = i.AcceptLanguage
	}
	return h
}
