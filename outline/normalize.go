package outline

import (
	"regexp"
	"strings"

	"github.com/brunobiangulo/pdfoutline/parser"
	"golang.org/x/text/unicode/norm"
)

// pageMarkerRe matches spans that are nothing but pagination: "12" or "Page 12".
var pageMarkerRe = regexp.MustCompile(`(?i)^(\p{Nd}+|page\s+\p{Nd}+)$`)

// Normalize composes the text to NFC, collapses every Unicode whitespace run
// to a single space and trims both ends.
func Normalize(raw string) string {
	return strings.Join(strings.Fields(norm.NFC.String(raw)), " ")
}

// IsPageMarker reports whether cleaned text is a bare page number or a
// "Page N" marker.
func IsPageMarker(text string) bool {
	return pageMarkerRe.MatchString(text)
}

// FilterNoise drops page markers and keeps every other span in order.
//
// Running headers and footers are not detected: a title repeated at the top
// of every page stays in the result.
func FilterNoise(spans []NormalizedSpan) []NormalizedSpan {
	out := make([]NormalizedSpan, 0, len(spans))
	for _, s := range spans {
		if IsPageMarker(s.Text) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// NormalizeSpans cleans raw spans, discards the ones left empty and filters
// noise.
func NormalizeSpans(raw []parser.Span) []NormalizedSpan {
	spans := make([]NormalizedSpan, 0, len(raw))
	for _, r := range raw {
		text := Normalize(r.Text)
		if text == "" {
			continue
		}
		spans = append(spans, NormalizedSpan{Text: text, Size: r.Size, Page: r.Page})
	}
	return FilterNoise(spans)
}
