package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs a human-readable summary for the terminal.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because it works in all terminals and is easy to pipe.
type SimpleWriter struct {
	baseWriter

	// verbose lists every link instead of only the flagged ones.
	verbose bool

	// reportPath is the path of the written report file, if any.
	reportPath string
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose lists every verified link, not only the flagged ones.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithReportPath adds the path of the written report to the summary.
func WithReportPath(path string) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.reportPath = path
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(r *Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, r)
	w.writeStatuses(&sb, r)
	w.writeLinks(&sb, r)

	if w.reportPath != "" {
		fmt.Fprintf(&sb, "Report: %s\n", w.reportPath)
	}

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the seed and the totals.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, r *Report) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("LINK CHECK SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Crawled URL:    %s\n", r.SeedURL)
	fmt.Fprintf(sb, "Crawl Time:     %s\n", r.CrawledAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Links Checked:  %d\n", r.Summary.Total)
	fmt.Fprintf(sb, "Flagged:        %d\n", r.Summary.Flagged)
	fmt.Fprintf(sb, "Mismatches:     %d\n", r.Summary.Mismatches)
	fmt.Fprintf(sb, "Missing Titles: %d\n", r.Summary.MissingTitles)
	sb.WriteString("\n")
}

// writeStatuses writes the number of links per status code.
func (w *SimpleWriter) writeStatuses(sb *strings.Builder, r *Report) {
	if len(r.Summary.StatusCounts) == 0 {
		return
	}
	sb.WriteString("STATUS CODES\n")
	for _, code := range r.Summary.StatusCodes() {
		fmt.Fprintf(sb, "  HTTP %d: %d\n", code, r.Summary.StatusCounts[code])
	}
	sb.WriteString("\n")
}

// writeLinks writes flagged links, or every link in verbose mode.
func (w *SimpleWriter) writeLinks(sb *strings.Builder, r *Report) {
	header := false
	for _, l := range r.Links {
		warning := Warning(l.Record)
		if warning == "" && !w.verbose {
			continue
		}
		if !header {
			if w.verbose {
				sb.WriteString("LINKS\n")
			} else {
				sb.WriteString("FLAGGED LINKS\n")
			}
			header = true
		}
		fmt.Fprintf(sb, "  [%d] %s\n", l.Record.StatusCode, l.URL)
		if warning != "" {
			fmt.Fprintf(sb, "        %s\n", strings.TrimSpace(warning))
		}
	}
	if header {
		sb.WriteString("\n")
	}
}
