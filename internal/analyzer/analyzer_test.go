package analyzer

import (
	"context"
	"testing"

	"github.com/nao1215/linkcheck/internal/model"
)

func TestAddressWithoutFragment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "https://example.com/a?x=1#section", want: "https://example.com/a?x=1"},
		{in: "https://example.com", want: "https://example.com/"},
		{in: "HTTPS://Example.COM/Path", want: "https://example.com/Path"},
		{in: "https://example.com:443/a", want: "https://example.com/a"},
		{in: "http://example.com:80/", want: "http://example.com/"},
		{in: "http://example.com:8080/a", want: "http://example.com:8080/a"},
		{in: "https://example.com/a?#frag", want: "https://example.com/a"},
		{in: "https://example.com/a%20b", want: "https://example.com/a%20b"},
		{in: "http://[::1]:8080/x", want: "http://[::1]:8080/x"},
		{in: "http://[::1]/x", want: "http://[::1]/x"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := AddressWithoutFragment(tt.in)
			if !ok {
				t.Fatalf("AddressWithoutFragment(%q) failed", tt.in)
			}
			if got != tt.want {
				t.Errorf("AddressWithoutFragment(%q) = %q, expected %q", tt.in, got, tt.want)
			}
		})
	}

	if _, ok := AddressWithoutFragment("/relative"); ok {
		t.Error("relative reference should not have an address")
	}
}

func TestAnalyzeRecord(t *testing.T) {
	t.Parallel()

	t.Run("fragment does not affect canonical comparison", func(t *testing.T) {
		t.Parallel()

		record := &model.LinkRecord{CanonicalStatic: "https://example.com/a?x=1"}
		diags := New().AnalyzeRecord("https://example.com/a?x=1#section", record)
		if record.Checks.CanonicalStaticMatch != model.CheckPassed {
			t.Errorf("expected canonical static match, got %v", record.Checks.CanonicalStaticMatch)
		}
		if len(diags) != 0 {
			t.Errorf("unexpected diagnostics %v", diags)
		}
	})

	t.Run("guards decide presence", func(t *testing.T) {
		t.Parallel()

		full := model.LinkRecord{
			StatusCode:        200,
			ContentType:       "text/html",
			CanonicalHeader:   "https://example.com/",
			CanonicalStatic:   "https://example.com/",
			CanonicalRendered: "https://example.com/",
			TitleStatic:       "Home",
			TitleRendered:     "Home",
		}

		type presence struct {
			canonicalHeader, canonicalStatic, renderedCanonical, title, canonical, seoTitle bool
		}
		tests := []struct {
			name   string
			mutate func(r *model.LinkRecord)
			want   presence
		}{
			{
				name:   "all operands present",
				mutate: func(*model.LinkRecord) {},
				want:   presence{true, true, true, true, true, true},
			},
			{
				name:   "no canonical header",
				mutate: func(r *model.LinkRecord) { r.CanonicalHeader = "" },
				want:   presence{false, true, true, true, true, true},
			},
			{
				name:   "no rendered data",
				mutate: func(r *model.LinkRecord) { r.CanonicalRendered, r.TitleRendered = "", "" },
				want:   presence{true, true, false, false, false, true},
			},
			{
				name:   "no static canonical",
				mutate: func(r *model.LinkRecord) { r.CanonicalStatic = "" },
				want:   presence{true, false, true, true, false, true},
			},
			{
				name:   "no static title",
				mutate: func(r *model.LinkRecord) { r.TitleStatic = "" },
				want:   presence{true, true, true, false, true, true},
			},
			{
				name: "redirect record",
				mutate: func(r *model.LinkRecord) {
					*r = model.LinkRecord{StatusCode: 301, RedirectLocation: "https://example.com/new"}
				},
				want: presence{},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				record := full
				tt.mutate(&record)
				New().AnalyzeRecord("https://example.com/", &record)

				c := record.Checks
				got := presence{
					canonicalHeader:   c.CanonicalHeaderMatch.Applicable(),
					canonicalStatic:   c.CanonicalStaticMatch.Applicable(),
					renderedCanonical: c.RenderedCanonicalMatch.Applicable(),
					title:             c.TitleMatch.Applicable(),
					canonical:         c.CanonicalMatch.Applicable(),
					seoTitle:          c.HasSEOTitle.Applicable(),
				}
				if got != tt.want {
					t.Errorf("presence = %+v, expected %+v", got, tt.want)
				}
			})
		}
	})

	t.Run("mismatches produce diagnostics", func(t *testing.T) {
		t.Parallel()

		record := &model.LinkRecord{
			StatusCode:        200,
			ContentType:       "text/html",
			CanonicalStatic:   "https://example.com/other",
			CanonicalRendered: "https://example.com/",
			TitleRendered:     "Rendered only",
		}
		diags := New().AnalyzeRecord("https://example.com/", record)

		want := map[string]string{
			"canonical_static": model.WarningCanonicalStaticMismatch,
			"canonical":        model.WarningCanonicalMismatch,
			"seo_title":        model.WarningMissingSEOTitle,
		}
		if len(diags) != len(want) {
			t.Fatalf("expected %d diagnostics, got %v", len(want), diags)
		}
		for _, d := range diags {
			if want[d.Check] != d.Message || d.URL != "https://example.com/" {
				t.Errorf("unexpected diagnostic %+v", d)
			}
		}
		if record.Checks.RenderedCanonicalMatch != model.CheckPassed {
			t.Error("expected rendered canonical to match")
		}
		if record.Checks.TitleMatch.Applicable() {
			t.Error("title check ran without a static title")
		}
		if !record.Checks.HasFailure() {
			t.Error("expected HasFailure")
		}
	})

	t.Run("titles are compared exactly", func(t *testing.T) {
		t.Parallel()

		record := &model.LinkRecord{TitleStatic: "Home ", TitleRendered: "Home"}
		New().AnalyzeRecord("https://example.com/", record)
		if record.Checks.TitleMatch != model.CheckFailed {
			t.Errorf("expected title mismatch, got %v", record.Checks.TitleMatch)
		}
	})
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	table := model.NewStatusTable()
	table.Set("https://example.com/b", &model.LinkRecord{StatusCode: 200, ContentType: "text/html"})
	table.Set("https://example.com/a", &model.LinkRecord{StatusCode: 200, ContentType: "text/html"})
	table.Set("https://example.com/c", &model.LinkRecord{StatusCode: 404})

	diags, err := New().Analyze(context.Background(), table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %v", diags)
	}
	if diags[0].URL != "https://example.com/a" || diags[1].URL != "https://example.com/b" {
		t.Errorf("diagnostics not in URL order: %v", diags)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Analyze(ctx, table); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestRules(t *testing.T) {
	t.Parallel()

	got := New().Rules()
	want := []string{"canonical_header", "canonical_static", "rendered_canonical", "title", "canonical", "seo_title"}
	if len(got) != len(want) {
		t.Fatalf("Rules() = %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Rules()[%d] = %q, expected %q", i, got[i], want[i])
		}
	}
}
