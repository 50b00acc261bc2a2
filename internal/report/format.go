package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Format is a report file format.
type Format string

const (
	// FormatHTML is the default report format.
	FormatHTML Format = "html"
	// FormatMarkdown renders GitHub-flavored markdown.
	FormatMarkdown Format = "markdown"
	// FormatJSON renders indented JSON.
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatHTML, FormatMarkdown, FormatJSON}
}

// ParseFormat converts a format name to a Format.
// "md" is accepted as an alias of "markdown".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "html", "":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Extension returns the file extension of the format, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatJSON:
		return "json"
	default:
		return "html"
	}
}

// nonAlnum matches every character replaced in report file names.
var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Filename returns the report file name for a seed and time:
// report_<seed with non-alphanumerics as _>_<UTC timestamp>.<ext>.
// Colons never appear in the timestamp so the name is valid on every OS.
func Filename(seed string, t time.Time, f Format) string {
	stamp := t.UTC().Format("2006-01-02T15-04-05.000Z")
	return fmt.Sprintf("report_%s_%s.%s", nonAlnum.ReplaceAllString(seed, "_"), stamp, f.Extension())
}

// NewWriter returns the writer for a format.
func NewWriter(f Format, output io.Writer) Writer {
	switch f {
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	default:
		return NewHTMLWriter(output)
	}
}

// WriteFile writes r in format f to a new file in dir and returns its path.
func WriteFile(dir string, r *Report, f Format) (string, error) {
	path := filepath.Join(dir, Filename(r.SeedURL, r.CrawledAt, f))

	file, err := os.Create(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}

	if _, err := NewWriter(f, file).Write(r); err != nil {
		_ = file.Close() //nolint:errcheck // the write error is more useful
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}
	return path, nil
}
