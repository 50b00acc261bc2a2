package report

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/nao1215/linkcheck/internal/model"
)

// notAvailable is shown in place of absent values.
const notAvailable = "N/A"

// Report is the data every writer renders.
type Report struct {
	// SeedURL is the URL the check started from.
	SeedURL string `json:"seed_url"`

	// CrawledAt is the time the check started.
	CrawledAt time.Time `json:"crawled_at"`

	// Version is the linkcheck version that produced the report.
	Version string `json:"version,omitempty"`

	// Links holds the verified links in ranked order.
	Links []model.RankedLink `json:"links"`

	// Summary is the condensed view of the run.
	Summary *model.Summary `json:"summary"`
}

// NewReport builds a Report from a finished run.
func NewReport(run *model.Run, version string) *Report {
	links := run.Ranked
	if links == nil {
		links = make([]model.RankedLink, 0)
	}
	return &Report{
		SeedURL:   run.SeedURL,
		CrawledAt: run.StartedAt,
		Version:   version,
		Links:     links,
		Summary:   model.Summarize(run),
	}
}

// Group is the set of links sharing one status code.
type Group struct {
	StatusCode int
	Links      []model.RankedLink
}

// IsRedirect reports whether the group holds 3xx responses.
func (g Group) IsRedirect() bool {
	return g.StatusCode >= 300 && g.StatusCode < 400
}

// IsSuccess reports whether the group holds 2xx responses.
func (g Group) IsSuccess() bool {
	return g.StatusCode >= 200 && g.StatusCode < 300
}

// Groups splits the links by status code, highest code first.
// Links inside a group keep their ranked order.
func (r *Report) Groups() []Group {
	index := make(map[int]int)
	groups := make([]Group, 0)
	for _, l := range r.Links {
		i, ok := index[l.Record.StatusCode]
		if !ok {
			i = len(groups)
			index[l.Record.StatusCode] = i
			groups = append(groups, Group{StatusCode: l.Record.StatusCode})
		}
		groups[i].Links = append(groups[i].Links, l)
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		return cmp.Compare(b.StatusCode, a.StatusCode)
	})
	return groups
}

// Warning returns the warning text of a record, or "" when every
// applicable check passed.
func Warning(r *model.LinkRecord) string {
	var sb strings.Builder
	for _, w := range r.Checks.Warnings() {
		sb.WriteString("⚠️ ")
		sb.WriteString(w)
		sb.WriteString(". ")
	}
	return sb.String()
}

// orNA returns s, or notAvailable when s is empty.
func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
