// Package viewer opens finished reports with the operating system's
// default application.
package viewer

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/pkg/browser"
)

// Viewer opens report files.
type Viewer struct {
	open   func(path string) error
	logger *slog.Logger
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Viewer) {
		v.logger = logger
	}
}

// WithOpener replaces the function that launches the viewer.
func WithOpener(open func(path string) error) Option {
	return func(v *Viewer) {
		v.open = open
	}
}

// silence discards the output of launched programs so the CLI summary
// stays readable.
var silence sync.Once

// openFile opens path with the OS default application.
func openFile(path string) error {
	silence.Do(func() {
		browser.Stdout = io.Discard
		browser.Stderr = io.Discard
	})
	return browser.OpenFile(path)
}

// New creates a Viewer backed by github.com/pkg/browser.
func New(opts ...Option) *Viewer {
	v := &Viewer{
		open:   openFile,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Open opens the file at path. A failure is logged and returned but is
// never fatal for a run; the report stays on disk.
func (v *Viewer) Open(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if err := v.open(abs); err != nil {
		v.logger.Warn("failed to open report", "path", abs, "error", err)
		return fmt.Errorf("failed to open %s: %w", abs, err)
	}
	v.logger.Debug("opened report", "path", abs)
	return nil
}
