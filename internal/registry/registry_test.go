package registry

import (
	"errors"
	"net/url"
	"reflect"
	"testing"
)

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("static page scenario", func(t *testing.T) {
		t.Parallel()

		static := []string{"/about", "https://example.com/about", "https://other.com/x"}
		got, err := Build("https://example.com/", static)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := Frontier{"https://example.com/about", "https://example.com/"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Build() = %v, expected %v", got, want)
		}
	})

	t.Run("duplicates collapse after resolution", func(t *testing.T) {
		t.Parallel()

		got, err := Build("https://example.com/",
			[]string{"/a", "/a", "a", "https://example.com/a"},
			[]string{"/a", "https://example.com/"},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := Frontier{"https://example.com/a", "https://example.com/"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Build() = %v, expected %v", got, want)
		}
	})

	t.Run("building is idempotent", func(t *testing.T) {
		t.Parallel()

		seed := "https://example.com/blog/"
		first, err := Build(seed, []string{"post-1", "../about", "/x?y=1#z", "https://EXAMPLE.com/caps", "mailto:a@example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := Build(seed, first, first)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("second build %v differs from first %v", second, first)
		}
		seen := make(map[string]bool)
		for _, u := range second {
			if seen[u] {
				t.Errorf("duplicate entry %s", u)
			}
			seen[u] = true
		}
	})

	t.Run("every entry is on the seed host", func(t *testing.T) {
		t.Parallel()

		got, err := Build("https://example.com/", []string{
			"https://sub.example.com/a",
			"https://example.com.evil.net/b",
			"https://evil.net/example.com",
			"//example.com/protocol-relative",
			"http://example.com:8080/port",
			"/ok",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, raw := range got {
			u, err := url.Parse(raw)
			if err != nil {
				t.Fatalf("frontier holds unparseable URL %q", raw)
			}
			if u.Hostname() != "example.com" {
				t.Errorf("frontier holds foreign host %q", raw)
			}
		}
		if len(got) != 4 {
			t.Errorf("expected 4 entries, got %v", got)
		}
	})

	t.Run("sorted by length descending then lexicographic", func(t *testing.T) {
		t.Parallel()

		got, err := Build("https://example.com/", []string{"/bb", "/aa", "/c", "/dddd"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := Frontier{
			"https://example.com/dddd",
			"https://example.com/aa",
			"https://example.com/bb",
			"https://example.com/c",
			"https://example.com/",
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Build() = %v, expected %v", got, want)
		}
	})

	t.Run("invalid references are dropped", func(t *testing.T) {
		t.Parallel()

		got, err := Build("https://example.com/", []string{"%zz", "javascript:void(0)", "https://example.com/has space", ""})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := Frontier{"https://example.com/"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Build() = %v, expected %v", got, want)
		}
	})

	t.Run("invalid seed", func(t *testing.T) {
		t.Parallel()

		for _, seed := range []string{"", "not a url", "ftp://example.com/", "/relative", "http://[::1"} {
			if _, err := Build(seed); !errors.Is(err, ErrInvalidSeed) {
				t.Errorf("Build(%q) error = %v, expected ErrInvalidSeed", seed, err)
			}
		}
	})

	t.Run("ignore patterns", func(t *testing.T) {
		t.Parallel()

		r := New(WithIgnorePatterns([]string{"/admin/*", "*.pdf"}))
		got, err := r.Build("https://example.com/", []string{"/admin/users", "/docs/a.pdf", "/docs/a.html"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := Frontier{"https://example.com/docs/a.html", "https://example.com/"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Build() = %v, expected %v", got, want)
		}
	})
}

func TestIsWebURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{in: "https://example.com/", want: true},
		{in: "HTTP://example.com", want: true},
		{in: "https://example.com:8443/a?b=c#d", want: true},
		{in: "ftp://example.com/", want: false},
		{in: "https:///path", want: false},
		{in: "/relative", want: false},
		{in: "https://example.com/a b", want: false},
		{in: "https://example.com/\x7f", want: false},
		{in: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := IsWebURI(tt.in); got != tt.want {
				t.Errorf("IsWebURI(%q) = %v, expected %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{pattern: "/admin/*", path: "/admin/dashboard", want: true},
		{pattern: "/admin/*", path: "/admin", want: true},
		{pattern: "/admin/*", path: "/administrator", want: false},
		{pattern: "*.pdf", path: "/docs/file.pdf", want: true},
		{pattern: "/api/v?", path: "/api/v2", want: true},
		{pattern: "/api/v?", path: "/api/v10", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			t.Parallel()
			if got := matchPattern(tt.pattern, tt.path); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, expected %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestBuildFeed(t *testing.T) {
	t.Parallel()

	got, err := New().BuildFeed("https://example.com/feed.xml", []string{
		"https://example.com/post-1",
		"https://example.com/post-2",
		"https://example.com/post-1",
		"https://cdn.example.net/image.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Frontier{"https://example.com/post-1", "https://example.com/post-2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildFeed() = %v, expected %v", got, want)
	}
}
