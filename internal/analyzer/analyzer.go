package analyzer

import (
	"context"
	"log/slog"

	"github.com/nao1215/linkcheck/internal/model"
)

// Analyzer runs consistency rules over a status table.
//
// Design decision: We use a coordinator with registered rules rather than
// one function per check so that the guard/compare/store sequence exists
// once. Every rule gets the same treatment: the guard decides applicability,
// the outcome is stored on the record and failures become diagnostics.
type Analyzer struct {
	rules  []Rule
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger for the analyzer.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New creates an Analyzer with the built-in rules registered.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		rules:  make([]Rule, 0, 6),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	// Page versus its own canonical declarations
	a.Register(NewCanonicalHeaderRule())
	a.Register(NewCanonicalStaticRule())
	a.Register(NewRenderedCanonicalRule())

	// Static versus rendered
	a.Register(NewTitleRule())
	a.Register(NewCanonicalRule())

	// Presence
	a.Register(NewSEOTitleRule())

	return a
}

// Register adds a rule to the end of the list.
func (a *Analyzer) Register(r Rule) {
	a.rules = append(a.rules, r)
}

// Rules returns the names of the registered rules in order.
func (a *Analyzer) Rules() []string {
	names := make([]string, len(a.rules))
	for i, r := range a.rules {
		names[i] = r.Name()
	}
	return names
}

// Analyze evaluates every rule on every record of table, storing outcomes
// on the records, and returns one diagnostic per failed check in URL order.
// Each rule only writes its own field, so the order of rules does not
// affect outcomes.
func (a *Analyzer) Analyze(ctx context.Context, table *model.StatusTable) ([]model.Diagnostic, error) {
	var diagnostics []model.Diagnostic

	for _, u := range table.URLs() {
		if err := ctx.Err(); err != nil {
			return diagnostics, err
		}
		record, ok := table.Get(u)
		if !ok || record == nil {
			continue
		}
		diagnostics = append(diagnostics, a.AnalyzeRecord(u, record)...)
	}

	a.logger.Info("analysis finished", "records", table.Len(), "failed_checks", len(diagnostics))
	return diagnostics, nil
}

// AnalyzeRecord evaluates every rule on a single record.
func (a *Analyzer) AnalyzeRecord(u string, record *model.LinkRecord) []model.Diagnostic {
	var diagnostics []model.Diagnostic
	for _, r := range a.rules {
		outcome := r.Evaluate(u, record)
		*r.Field(&record.Checks) = outcome
		if outcome.Failed() {
			a.logger.Debug("check failed", "check", r.Name(), "url", u)
			diagnostics = append(diagnostics, model.Diagnostic{
				URL:     u,
				Check:   r.Name(),
				Message: r.Message(),
			})
		}
	}
	return diagnostics
}
