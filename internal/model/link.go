package model

import "strings"

// LinkRecord is the verification result for a single discovered URL.
// A record exists only if the static fetch of its URL succeeded.
//
// Empty strings stand for absent values. Which fields are populated depends
// on the status class of the static response:
//   - 200: every field, with the rendered fields set only for HTML content
//   - 3xx: StatusCode, RedirectLocation and CanonicalHeader
//   - others: StatusCode and CanonicalHeader
type LinkRecord struct {
	// StatusCode is the HTTP status of the static fetch.
	StatusCode int `json:"status_code"`

	// RedirectLocation is the Location header of a 3xx response.
	RedirectLocation string `json:"redirect_location,omitempty"`

	// CanonicalHeader is the target of a Link header with rel="canonical".
	CanonicalHeader string `json:"canonical_header,omitempty"`

	// ContentType is the Content-Type header of a 200 response.
	ContentType string `json:"content_type,omitempty"`

	// TitleStatic is the <title> text of the static HTML.
	TitleStatic string `json:"title_static,omitempty"`

	// CanonicalStatic is the canonical link href of the static HTML.
	CanonicalStatic string `json:"canonical_static,omitempty"`

	// TitleRendered is the <title> text of the rendered DOM.
	TitleRendered string `json:"title_rendered,omitempty"`

	// CanonicalRendered is the canonical link href of the rendered DOM.
	CanonicalRendered string `json:"canonical_rendered,omitempty"`

	// ContentDigest is the hex SHA3-256 digest of the static body.
	// It lets history comparisons detect content changes between runs.
	ContentDigest string `json:"content_digest,omitempty"`

	// Checks holds the consistency signals computed by the analyzer.
	Checks Checks `json:"checks"`
}

// IsRedirect reports whether the record describes a 3xx response.
func (r *LinkRecord) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// IsHTML reports whether the record describes a successful HTML page.
func (r *LinkRecord) IsHTML() bool {
	return r.StatusCode == 200 && strings.Contains(strings.ToLower(r.ContentType), "html")
}

// RankedLink pairs a URL with its record in presentation order.
type RankedLink struct {
	URL    string      `json:"url"`
	Record *LinkRecord `json:"record"`
}

// Diagnostic describes one failed consistency check.
type Diagnostic struct {
	// URL is the address of the record the check ran on.
	URL string `json:"url"`

	// Check is the name of the failed check.
	Check string `json:"check"`

	// Message is a human-readable label such as "Title Mismatch".
	Message string `json:"message"`
}
