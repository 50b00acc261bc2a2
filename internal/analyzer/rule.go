package analyzer

import (
	"strings"

	"github.com/nao1215/linkcheck/internal/model"
)

// Rule is one consistency check.
type Rule interface {
	// Name returns the rule's identifier for logging and diagnostics.
	Name() string

	// Message returns the label reported when the rule fails.
	Message() string

	// Evaluate returns the outcome of the rule for the record at url.
	// It returns model.CheckNotApplicable when the guard does not hold.
	Evaluate(url string, r *model.LinkRecord) model.Check

	// Field returns the slot in checks that stores this rule's outcome.
	Field(checks *model.Checks) *model.Check
}

// rule is a Rule built from a guard, a comparison and a target field.
type rule struct {
	name    string
	message string
	guard   func(r *model.LinkRecord) bool
	pass    func(url string, r *model.LinkRecord) bool
	field   func(c *model.Checks) *model.Check
}

func (r *rule) Name() string    { return r.name }
func (r *rule) Message() string { return r.message }

func (r *rule) Evaluate(url string, rec *model.LinkRecord) model.Check {
	if !r.guard(rec) {
		return model.CheckNotApplicable
	}
	return model.CheckFrom(r.pass(url, rec))
}

func (r *rule) Field(c *model.Checks) *model.Check {
	return r.field(c)
}

// matchesAddress compares the fragment-free address of url with target.
// An unparseable url never matches.
func matchesAddress(url, target string) bool {
	addr, ok := AddressWithoutFragment(url)
	return ok && addr == target
}

// NewCanonicalHeaderRule checks that the Link header canonical points at
// the page itself.
func NewCanonicalHeaderRule() Rule {
	return &rule{
		name:    "canonical_header",
		message: model.WarningCanonicalHeaderMismatch,
		guard:   func(r *model.LinkRecord) bool { return r.CanonicalHeader != "" },
		pass:    func(u string, r *model.LinkRecord) bool { return matchesAddress(u, r.CanonicalHeader) },
		field:   func(c *model.Checks) *model.Check { return &c.CanonicalHeaderMatch },
	}
}

// NewCanonicalStaticRule checks that the static canonical link points at
// the page itself.
func NewCanonicalStaticRule() Rule {
	return &rule{
		name:    "canonical_static",
		message: model.WarningCanonicalStaticMismatch,
		guard:   func(r *model.LinkRecord) bool { return r.CanonicalStatic != "" },
		pass:    func(u string, r *model.LinkRecord) bool { return matchesAddress(u, r.CanonicalStatic) },
		field:   func(c *model.Checks) *model.Check { return &c.CanonicalStaticMatch },
	}
}

// NewRenderedCanonicalRule checks that the rendered canonical link points at
// the page itself.
func NewRenderedCanonicalRule() Rule {
	return &rule{
		name:    "rendered_canonical",
		message: model.WarningRenderedCanonicalMismatch,
		guard:   func(r *model.LinkRecord) bool { return r.CanonicalRendered != "" },
		pass:    func(u string, r *model.LinkRecord) bool { return matchesAddress(u, r.CanonicalRendered) },
		field:   func(c *model.Checks) *model.Check { return &c.RenderedCanonicalMatch },
	}
}

// NewTitleRule checks that scripts did not change the title.
func NewTitleRule() Rule {
	return &rule{
		name:    "title",
		message: model.WarningTitleMismatch,
		guard:   func(r *model.LinkRecord) bool { return r.TitleRendered != "" && r.TitleStatic != "" },
		pass:    func(_ string, r *model.LinkRecord) bool { return r.TitleStatic == r.TitleRendered },
		field:   func(c *model.Checks) *model.Check { return &c.TitleMatch },
	}
}

// NewCanonicalRule checks that scripts did not change the canonical link.
func NewCanonicalRule() Rule {
	return &rule{
		name:    "canonical",
		message: model.WarningCanonicalMismatch,
		guard:   func(r *model.LinkRecord) bool { return r.CanonicalRendered != "" && r.CanonicalStatic != "" },
		pass:    func(_ string, r *model.LinkRecord) bool { return r.CanonicalStatic == r.CanonicalRendered },
		field:   func(c *model.Checks) *model.Check { return &c.CanonicalMatch },
	}
}

// NewSEOTitleRule checks that HTML pages carry a title without scripts.
func NewSEOTitleRule() Rule {
	return &rule{
		name:    "seo_title",
		message: model.WarningMissingSEOTitle,
		guard:   func(r *model.LinkRecord) bool { return strings.Contains(r.ContentType, "html") },
		pass:    func(_ string, r *model.LinkRecord) bool { return r.TitleStatic != "" },
		field:   func(c *model.Checks) *model.Check { return &c.HasSEOTitle },
	}
}
