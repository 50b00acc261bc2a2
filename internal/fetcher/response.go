package fetcher

import (
	"net/http"
	"strings"
)

// Response is the result of a static or rendered fetch.
type Response struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status of the (main document) response.
	StatusCode int

	// Header holds the response headers.
	Header http.Header

	// Body is the document as UTF-8 text. For static fetches of non-text
	// content it equals Raw.
	Body []byte

	// Raw is the body exactly as received. Empty for rendered fetches.
	Raw []byte
}

// ContentType returns the Content-Type header.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Location returns the Location header.
func (r *Response) Location() string {
	return r.Header.Get("Location")
}

// LinkHeaders returns every Link header value.
func (r *Response) LinkHeaders() []string {
	return r.Header.Values("Link")
}

// IsRedirect reports whether the status is in the 3xx class.
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// IsHTML reports whether the content type is text/html.
func (r *Response) IsHTML() bool {
	return strings.Contains(strings.ToLower(r.ContentType()), "text/html")
}
