// Package registry turns raw link candidates into the crawl frontier.
//
// The frontier is the ordered list of URLs the verifier checks. Building it
// applies, in order: union with the seed, resolution against the seed,
// deduplication, same-host filtering, web URI validation, ignore patterns
// and a length-descending sort.
//
// # Usage
//
//	r := registry.New(registry.WithIgnorePatterns([]string{"/admin/*"}))
//	frontier, err := r.Build("https://example.com/", staticLinks, renderedLinks)
//
// Only the seed can make Build fail. Candidates that cannot be parsed or
// resolved are dropped silently.
package registry
