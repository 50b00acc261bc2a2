// Package ranker orders verified links for presentation.
package ranker

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/nao1215/linkcheck/internal/model"
)

// Rank returns the records of table in presentation order:
//
//  1. records with a failed check first;
//  2. successful HTML pages before everything else, shorter content type
//     first (so "text/html" precedes "text/html; charset=utf-8");
//  3. higher status codes first;
//  4. shorter URLs first;
//  5. URLs in lexicographic order.
//
// Design decision: A single comparator encodes the whole priority so the
// order does not depend on the stability of successive sorts.
func Rank(table *model.StatusTable) []model.RankedLink {
	ranked := make([]model.RankedLink, 0, table.Len())
	table.Each(func(u string, r *model.LinkRecord) {
		ranked = append(ranked, model.RankedLink{URL: u, Record: r})
	})
	slices.SortFunc(ranked, Compare)
	return ranked
}

// Compare orders two ranked links as Rank does.
func Compare(a, b model.RankedLink) int {
	if fa, fb := a.Record.Checks.HasFailure(), b.Record.Checks.HasFailure(); fa != fb {
		if fa {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(contentTypeBucket(a.Record), contentTypeBucket(b.Record)); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Record.StatusCode, a.Record.StatusCode); c != 0 {
		return c
	}
	if c := cmp.Compare(len(a.URL), len(b.URL)); c != 0 {
		return c
	}
	return strings.Compare(a.URL, b.URL)
}

// contentTypeBucket is the content type length of a successful HTML page
// and math.MaxInt for anything else.
func contentTypeBucket(r *model.LinkRecord) int {
	if r.StatusCode == 200 && strings.Contains(r.ContentType, "html") {
		return len(r.ContentType)
	}
	return math.MaxInt
}
