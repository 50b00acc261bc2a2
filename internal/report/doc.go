// Package report renders the results of a link check.
//
// This package contains writers for different output formats:
//   - HTMLWriter: the default report, one table per status code
//   - MarkdownWriter: the same tables for sharing in issues and wikis
//   - JSONWriter: structured output for tool integration
//   - SimpleWriter: a short summary for terminal display
//
// Design decision: Writers consume a Report rather than a model.Run so that
// the rendering code never depends on how a run was produced. Adding a
// format does not touch the model package.
package report
