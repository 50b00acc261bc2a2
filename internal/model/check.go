package model

import (
	"bytes"
	"fmt"
)

// Check is the outcome of one consistency check on a LinkRecord.
//
// A check is only computed when all of its operands are present, so a plain
// bool cannot distinguish "failed" from "never ran". The zero value is
// CheckNotApplicable and is omitted from JSON output by omitempty.
type Check uint8

const (
	// CheckNotApplicable means the guard of the check did not hold.
	CheckNotApplicable Check = iota
	// CheckPassed means the operands were present and matched.
	CheckPassed
	// CheckFailed means the operands were present and did not match.
	CheckFailed
)

// CheckFrom converts a comparison result into a computed Check.
func CheckFrom(ok bool) Check {
	if ok {
		return CheckPassed
	}
	return CheckFailed
}

// Applicable reports whether the check was computed.
func (c Check) Applicable() bool {
	return c != CheckNotApplicable
}

// Failed reports whether the check was computed and did not pass.
func (c Check) Failed() bool {
	return c == CheckFailed
}

// String returns a human-readable form of the check.
func (c Check) String() string {
	switch c {
	case CheckPassed:
		return "true"
	case CheckFailed:
		return "false"
	default:
		return ""
	}
}

// MarshalJSON encodes a computed check as a JSON boolean and an
// uncomputed one as null.
func (c Check) MarshalJSON() ([]byte, error) {
	switch c {
	case CheckPassed:
		return []byte("true"), nil
	case CheckFailed:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false and null.
func (c *Check) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*c = CheckPassed
	case "false":
		*c = CheckFailed
	case "null":
		*c = CheckNotApplicable
	default:
		return fmt.Errorf("model: invalid check value %s", data)
	}
	return nil
}

// Checks holds the six derived consistency signals of a LinkRecord.
type Checks struct {
	// CanonicalHeaderMatch compares the address with the Link header canonical.
	CanonicalHeaderMatch Check `json:"canonical_header_match,omitempty"`

	// CanonicalStaticMatch compares the address with the static canonical.
	CanonicalStaticMatch Check `json:"canonical_static_match,omitempty"`

	// RenderedCanonicalMatch compares the address with the rendered canonical.
	RenderedCanonicalMatch Check `json:"rendered_canonical_match,omitempty"`

	// TitleMatch compares the static and rendered titles.
	TitleMatch Check `json:"title_match,omitempty"`

	// CanonicalMatch compares the static and rendered canonicals.
	CanonicalMatch Check `json:"canonical_match,omitempty"`

	// HasSEOTitle reports whether an HTML page carries a static title.
	HasSEOTitle Check `json:"has_seo_title,omitempty"`
}

// HasFailure reports whether any computed check failed.
func (c Checks) HasFailure() bool {
	return c.CanonicalHeaderMatch.Failed() ||
		c.CanonicalStaticMatch.Failed() ||
		c.RenderedCanonicalMatch.Failed() ||
		c.TitleMatch.Failed() ||
		c.CanonicalMatch.Failed() ||
		c.HasSEOTitle.Failed()
}

// Warning labels of failed checks, as shown in reports.
const (
	WarningCanonicalHeaderMismatch   = "Canonical Header Mismatch"
	WarningCanonicalStaticMismatch   = "Canonical Static Mismatch"
	WarningMissingSEOTitle           = "Missing SEO Title"
	WarningRenderedCanonicalMismatch = "Rendered Canonical Mismatch"
	WarningTitleMismatch             = "Title Mismatch"
	WarningCanonicalMismatch         = "Canonical Mismatch"
)

// Warnings returns the labels of all failed checks in report order.
func (c Checks) Warnings() []string {
	var w []string
	for _, item := range []struct {
		check Check
		label string
	}{
		{c.CanonicalHeaderMatch, WarningCanonicalHeaderMismatch},
		{c.CanonicalStaticMatch, WarningCanonicalStaticMismatch},
		{c.HasSEOTitle, WarningMissingSEOTitle},
		{c.RenderedCanonicalMatch, WarningRenderedCanonicalMismatch},
		{c.TitleMatch, WarningTitleMismatch},
		{c.CanonicalMatch, WarningCanonicalMismatch},
	} {
		if item.check.Failed() {
			w = append(w, item.label)
		}
	}
	return w
}
