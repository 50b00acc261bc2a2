package model

import (
	"net/url"
	"strings"
	"time"
)

// Run holds the state of one link check from discovery to ranking.
// Pipeline steps read and extend it in order.
//
// Design decision: A single struct shared by all steps keeps the step
// interface uniform (Do(ctx, run)) and makes the whole run serializable for
// history storage without an extra mapping layer.
type Run struct {
	// SeedURL is the URL the check started from, as given by the user.
	SeedURL string `json:"seed_url"`

	// SeedHost is the lower-case hostname of SeedURL.
	SeedHost string `json:"seed_host"`

	// IsFeed is true if the seed was treated as a feed.
	IsFeed bool `json:"is_feed"`

	// Candidates are the raw references collected during discovery.
	Candidates []string `json:"candidates,omitempty"`

	// Frontier is the deduplicated, domain-scoped and ordered URL list.
	Frontier []string `json:"frontier,omitempty"`

	// Table holds one record per verified URL.
	Table *StatusTable `json:"table"`

	// Diagnostics lists every failed consistency check.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	// Ranked is the presentation order of Table.
	Ranked []RankedLink `json:"ranked,omitempty"`

	// Steps records the names of the pipeline steps executed.
	Steps []string `json:"steps,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run ended.
	FinishedAt time.Time `json:"finished_at"`

	// Error contains a message if the run stopped early.
	Error string `json:"error,omitempty"`
}

// NewRun creates a Run for the given seed. The seed host is taken from the
// parsed URL; an unparseable seed leaves it empty for the caller to reject.
func NewRun(seed string) *Run {
	r := &Run{
		SeedURL:   seed,
		Table:     NewStatusTable(),
		StartedAt: time.Now(),
	}
	if u, err := url.Parse(seed); err == nil {
		r.SeedHost = strings.ToLower(u.Hostname())
	}
	return r
}

// Duration returns how long the run took.
// It returns zero if the run has not finished.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
