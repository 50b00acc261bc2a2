package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(r *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, r)
	w.writeSummary(md, r)
	w.writeGroups(md, r)
	w.writeFooter(md, r)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, r *Report) {
	md.H1("Link Checker Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Crawled URL", mdLink(r.SeedURL)},
			{"Crawl Time", r.CrawledAt.Format("2006-01-02 15:04:05 MST")},
			{"Links Checked", strconv.Itoa(r.Summary.Total)},
			{"Flagged Links", strconv.Itoa(r.Summary.Flagged)},
		},
	})
	md.PlainText("")
}

// writeSummary writes the status distribution and an alert for flagged links.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, r *Report) {
	if r.Summary.Total > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Status Code Distribution"),
			piechart.WithShowData(true),
		)
		for _, code := range r.Summary.StatusCodes() {
			chart.LabelAndIntValue("HTTP "+strconv.Itoa(code), uint64(r.Summary.StatusCounts[code]))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case r.Summary.Flagged > 0:
		md.Warningf(
			"%d link(s) failed at least one consistency check (%d mismatch(es), %d missing title(s)).",
			r.Summary.Flagged, r.Summary.Mismatches, r.Summary.MissingTitles,
		)
	case r.Summary.Total == 0:
		md.Note("No links were verified.")
	default:
		md.Tip("Every applicable consistency check passed.")
	}
	md.PlainText("")
}

// writeGroups writes one table per status code, highest first.
func (w *MarkdownWriter) writeGroups(md *markdown.Markdown, r *Report) {
	for _, g := range r.Groups() {
		md.H2("HTTP " + strconv.Itoa(g.StatusCode))
		md.PlainText("")

		header := []string{"URL", "Status Code", "Warnings"}
		if g.IsRedirect() {
			header = append(header, "Redirect URL")
		}
		if g.IsSuccess() {
			header = append(header,
				"Content Type", "Canonical Header", "Canonical Static",
				"Title Static", "Canonical Rendered", "Title Rendered",
			)
		}

		rows := make([][]string, 0, len(g.Links))
		for _, l := range g.Links {
			rec := l.Record
			row := []string{mdLink(l.URL), strconv.Itoa(rec.StatusCode), mdCell(Warning(rec))}
			if g.IsRedirect() {
				redirect := notAvailable
				if rec.RedirectLocation != "" {
					redirect = mdLink(rec.RedirectLocation)
				}
				row = append(row, redirect)
			}
			if g.IsSuccess() {
				row = append(row,
					mdCell(orNA(rec.ContentType)),
					mdCell(orNA(rec.CanonicalHeader)),
					mdCell(orNA(rec.CanonicalStatic)),
					mdCell(orNA(rec.TitleStatic)),
					mdCell(orNA(rec.CanonicalRendered)),
					mdCell(orNA(rec.TitleRendered)),
				)
			}
			rows = append(rows, row)
		}

		md.Table(markdown.TableSet{
			Header: header,
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown, r *Report) {
	md.HorizontalRule()
	md.PlainText("")
	if r.Version != "" {
		md.PlainTextf("*Report generated by linkcheck %s*", r.Version)
		return
	}
	md.PlainText("*Report generated by linkcheck*")
}

// mdCell makes s safe inside a table cell.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// mdLink renders u as an inline link.
func mdLink(u string) string {
	u = mdCell(u)
	return "[" + u + "](" + u + ")"
}
