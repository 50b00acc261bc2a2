package extractor

import (
	"bytes"
	"mime"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html"
)

// feedURLRegex matches http(s) URLs in free text: scheme, optional userinfo,
// host, optional port and an optional path made of URL-safe characters.
var feedURLRegex = regexp.MustCompile(
	`https?://(?:[\w.\-~%!$&'()*+,;=]+(?::[\w.\-~%!$&'()*+,;=]*)?@)?[\w.\-]+(?::[0-9]+)?(?:/[\w#!:.?+=&%@\-/]*)?`,
)

// trailingPunctuation is stripped from matches so that a URL ending a
// sentence does not carry the full stop into the frontier.
const trailingPunctuation = ".,;:!?"

// feedPathRegex matches seed URLs that point at a feed.
var feedPathRegex = regexp.MustCompile(`(?:\.(?:xml|rss)|/feed/?)$`)

// FeedLinks returns every http(s) URL found in the text content of a feed
// document. Order is preserved and duplicates are kept.
func FeedLinks(body []byte) []string {
	matches := feedURLRegex.FindAllString(flatten(body), -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, trailingPunctuation)
		if m != "" {
			links = append(links, m)
		}
	}
	return links
}

// flatten returns the text content of a document with every text node on
// its own line, so URLs in adjacent elements never run together.
// XML is parsed with xmlquery; anything it rejects (plain text, broken
// markup) is flattened by the lenient HTML parser instead.
func flatten(body []byte) string {
	var sb strings.Builder

	if doc, err := xmlquery.Parse(bytes.NewReader(body)); err == nil {
		var walk func(*xmlquery.Node)
		walk = func(n *xmlquery.Node) {
			if n.Type == xmlquery.TextNode || n.Type == xmlquery.CharDataNode {
				sb.WriteString(n.Data)
				sb.WriteByte('\n')
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
		walk(doc)
		return sb.String()
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return string(body)
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return sb.String()
}

// IsFeed reports whether a URL or its response content type denotes a feed.
// contentType may be empty when only the URL is known.
func IsFeed(rawURL, contentType string) bool {
	if feedPathRegex.MatchString(rawURL) {
		return true
	}
	return IsFeedContentType(contentType)
}

// IsFeedContentType reports whether a Content-Type value is an XML, RSS,
// Atom or plain-text type. XHTML is markup, not a feed.
func IsFeedContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}

	switch mediaType {
	case "application/xhtml+xml":
		return false
	case "text/xml", "application/xml", "text/plain",
		"application/rss+xml", "application/atom+xml", "application/rdf+xml":
		return true
	}
	return strings.HasSuffix(mediaType, "+xml")
}
