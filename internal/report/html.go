package report

import (
	"bytes"
	"html/template"
	"io"
	"strconv"
)

// HTMLWriter outputs the report as a standalone HTML page.
// This is the default format and is what the viewer opens.
//
// Design decision: We use html/template rather than string concatenation so
// that titles and URLs scraped from third-party pages are always escaped.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
	}
}

// htmlRow is one table row as the template sees it.
type htmlRow struct {
	URL               string
	StatusCode        int
	Warning           string
	RedirectURL       string
	ContentType       string
	CanonicalHeader   string
	CanonicalStatic   string
	TitleStatic       string
	CanonicalRendered string
	TitleRendered     string
}

// htmlGroup is one status code section as the template sees it.
type htmlGroup struct {
	StatusCode int
	Redirect   bool
	Success    bool
	Rows       []htmlRow
}

// htmlPage is the template root.
type htmlPage struct {
	SeedURL   string
	CrawlTime string
	Version   string
	Groups    []htmlGroup
}

// Write outputs the report in HTML format.
func (w *HTMLWriter) Write(r *Report) (int, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, newHTMLPage(r)); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}

func newHTMLPage(r *Report) htmlPage {
	page := htmlPage{
		SeedURL:   r.SeedURL,
		CrawlTime: r.CrawledAt.Local().Format("2006-01-02 15:04:05 MST"),
		Version:   r.Version,
	}
	for _, g := range r.Groups() {
		hg := htmlGroup{
			StatusCode: g.StatusCode,
			Redirect:   g.IsRedirect(),
			Success:    g.IsSuccess(),
			Rows:       make([]htmlRow, 0, len(g.Links)),
		}
		for _, l := range g.Links {
			rec := l.Record
			hg.Rows = append(hg.Rows, htmlRow{
				URL:               l.URL,
				StatusCode:        rec.StatusCode,
				Warning:           Warning(rec),
				RedirectURL:       rec.RedirectLocation,
				ContentType:       orNA(rec.ContentType),
				CanonicalHeader:   orNA(rec.CanonicalHeader),
				CanonicalStatic:   orNA(rec.CanonicalStatic),
				TitleStatic:       orNA(rec.TitleStatic),
				CanonicalRendered: orNA(rec.CanonicalRendered),
				TitleRendered:     orNA(rec.TitleRendered),
			})
		}
		page.Groups = append(page.Groups, hg)
	}
	return page
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"itoa": strconv.Itoa,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Link Checker Report</title>
<style>
* { box-sizing: border-box; margin: 0; padding: 0; }
body { font-family: Arial, sans-serif; font-size: 16px; line-height: 1.5; color: #333; background-color: #f5f5f5; padding: 20px; }
h1, h2 { margin-top: 20px; margin-bottom: 10px; }
a { color: #007bff; text-decoration: none; }
a:hover { text-decoration: underline; }
table { border-collapse: collapse; width: 100%; margin-bottom: 20px; }
th, td { text-align: left; padding: 8px; border: 1px solid black; }
th { background-color: #ddd; }
.warning td { background-color: #ffffcc; }
.mono { font-family: monospace; }
footer { margin-top: 20px; font-size: 12px; color: #777; }
</style>
</head>
<body>
<h1>Link Checker Report</h1>
<p>Crawled URL: <a href="{{.SeedURL}}" target="_blank">{{.SeedURL}}</a></p>
<p>Crawl Time: {{.CrawlTime}}</p>
{{- range .Groups}}
<h2>HTTP {{itoa .StatusCode}}</h2>
<table>
<thead>
<tr>
<th>URL</th>
<th>Status Code</th>
<th>Warnings</th>
{{- if .Redirect}}
<th>Redirect URL</th>
{{- end}}
{{- if .Success}}
<th>Content Type</th><th>Canonical Header</th><th>Canonical Static</th><th>Title Static</th><th>Canonical Rendered</th><th>Title Rendered</th>
{{- end}}
</tr>
</thead>
<tbody>
{{- $group := .}}
{{- range .Rows}}
<tr{{if .Warning}} class="warning"{{end}}>
<td><a href="{{.URL}}" target="_blank">{{.URL}}</a></td>
<td>{{itoa .StatusCode}}</td>
<td>{{.Warning}}</td>
{{- if $group.Redirect}}
<td>{{if .RedirectURL}}<a href="{{.RedirectURL}}" target="_blank">{{.RedirectURL}}</a>{{else}}N/A{{end}}</td>
{{- end}}
{{- if $group.Success}}
<td class="mono">{{.ContentType}}</td><td class="mono">{{.CanonicalHeader}}</td><td class="mono">{{.CanonicalStatic}}</td><td class="mono">{{.TitleStatic}}</td><td>{{.CanonicalRendered}}</td><td>{{.TitleRendered}}</td>
{{- end}}
</tr>
{{- end}}
</tbody>
</table>
{{- end}}
{{- if .Version}}
<footer>Generated by linkcheck {{.Version}}</footer>
{{- end}}
</body>
</html>
`))
