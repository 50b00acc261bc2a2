package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/linkcheck/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because the model types carry their own marshalers (tri-state
// checks, the status table) and encoding/json is what they are written for.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// jsonLink is a ranked link with its warnings spelled out.
type jsonLink struct {
	URL      string   `json:"url"`
	Warnings []string `json:"warnings"`
	*model.LinkRecord
}

// jsonReport is the document written by JSONWriter.
type jsonReport struct {
	*Report
	Links []jsonLink `json:"links"`
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(r *Report) (int, error) {
	doc := jsonReport{
		Report: r,
		Links:  make([]jsonLink, 0, len(r.Links)),
	}
	for _, l := range r.Links {
		warnings := l.Record.Checks.Warnings()
		if warnings == nil {
			warnings = make([]string, 0)
		}
		doc.Links = append(doc.Links, jsonLink{
			URL:        l.URL,
			Warnings:   warnings,
			LinkRecord: l.Record,
		})
	}
	return w.writeJSON(doc)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
