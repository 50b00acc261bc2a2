package extractor

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// linkSelector matches every element carrying a link-like attribute.
const linkSelector = "*[href], *[src]"

// Links returns the href (or, when href is empty, the src) of every element
// carrying either attribute. Empty values are discarded; order follows the
// document and duplicates are kept.
//
// Malformed markup never fails: the HTML5 parser recovers from anything, so
// an unparseable body simply yields no links.
func Links(body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	links := make([]string, 0)
	doc.Find(linkSelector).Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr("href")
		if v == "" {
			v, _ = s.Attr("src")
		}
		if v != "" {
			links = append(links, v)
		}
	})
	return links
}
