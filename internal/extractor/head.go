package extractor

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// HeadData holds the SEO-relevant values of a document head.
// Empty strings mean the value is absent.
type HeadData struct {
	// Title is the concatenated text of every <title> inside <head>.
	// It is not trimmed: whitespace differences are real differences.
	Title string

	// Canonical is the href of the first <link rel="canonical"> in <head>.
	Canonical string
}

// Head extracts the title and canonical link from an HTML document.
// The same extraction is applied to static bodies and rendered DOMs so that
// the two can be compared value for value.
func Head(body []byte) HeadData {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return HeadData{}
	}

	canonical, _ := doc.Find(`head link[rel="canonical"]`).First().Attr("href")
	return HeadData{
		Title:     doc.Find("head title").Text(),
		Canonical: canonical,
	}
}
