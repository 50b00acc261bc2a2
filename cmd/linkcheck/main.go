// Package main provides the entry point for the linkcheck CLI.
//
// linkcheck verifies every same-site link of a page or feed. Each link is
// fetched both as raw HTML and as a rendered DOM, checked for canonical and
// title consistency, and written to a report grouped by HTTP status code.
//
// Usage:
//
//	linkcheck <url>
//	linkcheck -u <url> --format markdown
//	linkcheck history --compare <url>
//
// See --help for all available options.
package main

// main is the entry point for linkcheck.
func main() {
	Execute()
}
