package model

import "sort"

// Summary is a condensed view of a Run for console output and history.
type Summary struct {
	// SeedURL is the URL the check started from.
	SeedURL string `json:"seed_url"`

	// Total is the number of verified URLs.
	Total int `json:"total"`

	// Flagged is the number of records with at least one failed check.
	Flagged int `json:"flagged"`

	// Mismatches is the number of failed comparison checks.
	Mismatches int `json:"mismatches"`

	// MissingTitles is the number of HTML pages without a static title.
	MissingTitles int `json:"missing_titles"`

	// StatusCounts maps status codes to the number of records.
	StatusCounts map[int]int `json:"status_counts"`
}

// StatusCodes returns the status codes present, highest first.
func (s *Summary) StatusCodes() []int {
	codes := make([]int, 0, len(s.StatusCounts))
	for c := range s.StatusCounts {
		codes = append(codes, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(codes)))
	return codes
}

// Summarize computes a Summary from a run's status table.
func Summarize(run *Run) *Summary {
	s := &Summary{
		SeedURL:      run.SeedURL,
		StatusCounts: make(map[int]int),
	}
	if run.Table == nil {
		return s
	}

	run.Table.Each(func(_ string, r *LinkRecord) {
		s.Total++
		s.StatusCounts[r.StatusCode]++
		if r.Checks.HasFailure() {
			s.Flagged++
		}
		for _, c := range []Check{
			r.Checks.CanonicalHeaderMatch,
			r.Checks.CanonicalStaticMatch,
			r.Checks.RenderedCanonicalMatch,
			r.Checks.TitleMatch,
			r.Checks.CanonicalMatch,
		} {
			if c.Failed() {
				s.Mismatches++
			}
		}
		if r.Checks.HasSEOTitle.Failed() {
			s.MissingTitles++
		}
	})
	return s
}
