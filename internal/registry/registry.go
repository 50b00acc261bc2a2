package registry

import (
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
)

// Frontier is the ordered, duplicate-free list of URLs to verify.
// Every entry is an absolute web URL on the seed host; entries are sorted by
// length, longest first.
type Frontier []string

// Registry builds frontiers from link candidates.
type Registry struct {
	// ignorePatterns are URL path globs excluded from the frontier.
	ignorePatterns []string

	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithIgnorePatterns excludes URLs whose path matches any of the patterns.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf").
func WithIgnorePatterns(patterns []string) Option {
	return func(r *Registry) {
		r.ignorePatterns = patterns
	}
}

// WithLogger sets the logger for the registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates a Registry with the given options.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build builds a frontier with the default Registry.
func Build(seed string, candidates ...[]string) (Frontier, error) {
	return New().Build(seed, candidates...)
}

// ParseSeed parses and validates a seed URL.
func ParseSeed(seed string) (*url.URL, error) {
	u, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	if !IsWebURI(seed) {
		return nil, fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrInvalidSeed, seed)
	}
	return u, nil
}

// Build unions the candidate lists with the seed and returns the frontier.
//
// References that do not start with "http" are resolved against the seed;
// absolute ones are kept verbatim. Deduplication happens after resolution,
// so "/a" and "https://host/a" collapse into one entry. Building is
// idempotent: feeding a frontier back in yields the same frontier.
func (r *Registry) Build(seed string, candidates ...[]string) (Frontier, error) {
	return r.build(seed, true, candidates)
}

// BuildFeed is Build for feed runs: the feed URL only provides the base and
// the host, it is not itself part of the frontier.
func (r *Registry) BuildFeed(feedURL string, candidates ...[]string) (Frontier, error) {
	return r.build(feedURL, false, candidates)
}

func (r *Registry) build(seed string, includeSeed bool, candidates [][]string) (Frontier, error) {
	base, err := ParseSeed(seed)
	if err != nil {
		return nil, err
	}
	host := base.Hostname()

	seen := make(map[string]struct{})
	frontier := make(Frontier, 0)

	add := func(ref string) {
		resolved, ok := resolve(base, ref)
		if !ok {
			return
		}
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}

		if !sameHost(resolved, host) || !IsWebURI(resolved) {
			return
		}
		if ignored(r.ignorePatterns, resolved) {
			r.logger.Debug("ignoring URL by pattern", "url", resolved)
			return
		}
		frontier = append(frontier, resolved)
	}

	if includeSeed {
		add(seed)
	}
	for _, list := range candidates {
		for _, ref := range list {
			add(ref)
		}
	}

	sort.SliceStable(frontier, func(i, j int) bool {
		if len(frontier[i]) != len(frontier[j]) {
			return len(frontier[i]) > len(frontier[j])
		}
		return frontier[i] < frontier[j]
	})

	r.logger.Debug("frontier built", "seed", seed, "host", host, "urls", len(frontier))
	return frontier, nil
}

// resolve returns the absolute form of ref.
func resolve(base *url.URL, ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	if strings.HasPrefix(ref, "http") {
		if _, err := url.Parse(ref); err != nil {
			return "", false
		}
		return ref, true
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(u).String(), true
}

// sameHost reports whether rawURL's hostname equals host.
func sameHost(rawURL, host string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), host)
}
