package viewer

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestViewerOpen(t *testing.T) {
	t.Parallel()

	t.Run("passes an absolute path to the opener", func(t *testing.T) {
		t.Parallel()

		var opened string
		v := New(WithOpener(func(path string) error {
			opened = path
			return nil
		}))

		if err := v.Open("report.html"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !filepath.IsAbs(opened) || filepath.Base(opened) != "report.html" {
			t.Errorf("unexpected path %q", opened)
		}
	})

	t.Run("returns opener failures", func(t *testing.T) {
		t.Parallel()

		errNoViewer := errors.New("no viewer")
		v := New(WithOpener(func(string) error { return errNoViewer }))

		if err := v.Open("report.html"); !errors.Is(err, errNoViewer) {
			t.Errorf("expected wrapped opener error, got %v", err)
		}
	})
}
