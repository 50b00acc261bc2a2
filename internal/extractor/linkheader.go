package extractor

import "strings"

// CanonicalFromLinkHeader returns the target of the first link-value with
// rel="canonical" among the given Link header values, or "" if none.
// The rel parameter is matched literally, so rel="Canonical" or an
// unquoted rel=canonical is not recognized.
//
// The target is the part before the first ";" with the angle brackets and
// surrounding whitespace removed, so `<https://example.com/a>; rel="canonical"`
// yields "https://example.com/a".
func CanonicalFromLinkHeader(values []string) string {
	for _, header := range values {
		for _, lv := range splitLinkValues(header) {
			if !strings.Contains(lv, `rel="canonical"`) {
				continue
			}
			target, _, _ := strings.Cut(lv, ";")
			target = strings.TrimSpace(target)
			target = strings.TrimPrefix(target, "<")
			target = strings.TrimSuffix(target, ">")
			return strings.TrimSpace(target)
		}
	}
	return ""
}

// splitLinkValues splits a Link header into its comma separated link-values.
// Commas inside <...> belong to the URI and do not split.
func splitLinkValues(header string) []string {
	var (
		values  []string
		depth   int
		current strings.Builder
	)
	for _, r := range header {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case r == ',' && depth == 0:
			values = append(values, current.String())
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		values = append(values, current.String())
	}
	return values
}
