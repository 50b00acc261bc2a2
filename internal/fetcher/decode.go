package fetcher

import (
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// isTextual reports whether a content type carries text worth decoding.
// An absent content type is treated as text, as browsers sniff it.
func isTextual(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(contentType)
	}
	return strings.HasPrefix(mediaType, "text/") ||
		strings.Contains(mediaType, "xml") ||
		strings.Contains(mediaType, "html") ||
		strings.Contains(mediaType, "json")
}

// encodingFor determines the character encoding of body from the declared
// content type, a BOM or a <meta charset> declaration.
// certain is false when the encoding was guessed.
func encodingFor(body []byte, contentType string) (enc encoding.Encoding, name string, certain bool) {
	return charset.DetermineEncoding(body, contentType)
}

// toUTF8 converts a textual body to UTF-8. Bodies that are already UTF-8,
// non-textual or undecodable are returned unchanged.
func toUTF8(body []byte, contentType string) []byte {
	if len(body) == 0 || !isTextual(contentType) {
		return body
	}
	enc, name, certain := encodingFor(body, contentType)
	if name == "utf-8" || (!certain && utf8.Valid(body)) {
		return body
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}
