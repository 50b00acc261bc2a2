// Package verifier checks every frontier URL and records what it finds.
//
// Each URL is fetched statically. Depending on the status class, the record
// gets the redirect target, the canonical Link header, the content type, the
// static head data and (for HTML pages) the head data of the rendered DOM.
// URLs whose static fetch fails get no record at all.
//
// Verification runs concurrently on a bounded pool. One failing URL never
// affects another, and results carry no ordering guarantee.
package verifier
