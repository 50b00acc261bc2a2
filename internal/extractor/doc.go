// Package extractor pulls link candidates and SEO head data out of fetched
// documents.
//
// Two extraction policies exist:
//   - Markup policy (Links): the href or src attribute of every element
//     that carries one, in document order.
//   - Feed policy (FeedLinks): every http(s) URL found in the flattened text
//     of an RSS/Atom/XML or plain-text document.
//
// Extraction never resolves, filters or deduplicates; the registry package
// owns those rules so that both policies feed the same frontier logic.
//
// Design decision: We use goquery (CSS selectors over golang.org/x/net/html)
// for markup and antchfx/xmlquery for feeds rather than walking the node
// tree by hand, because the selectors map one to one onto the queries the
// checks are defined in ("head title", "head link[rel=canonical]").
package extractor
