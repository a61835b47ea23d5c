// Package outline infers a heading outline from the text spans of a
// document: it cleans the spans, measures the body font size, labels spans
// that are noticeably larger as headings and lays them out as a flat,
// page-ordered list.
package outline

import "fmt"

// Level is a heading rank. H1 is the most prominent.
type Level int

const (
	H1 Level = iota + 1
	H2
	H3
	H4
)

// String returns the level as used in the output schema ("H1".."H4").
func (l Level) String() string {
	return fmt.Sprintf("H%d", int(l))
}

// NormalizedSpan is a span whose text has been cleaned. Text is never empty
// and holds no run of whitespace longer than a single space.
type NormalizedSpan struct {
	Text string
	Size float64
	Page int
}

// HeadingCandidate is a span that qualified as a heading.
type HeadingCandidate struct {
	NormalizedSpan
	Level Level
}

// Entry is one line of the assembled outline.
type Entry struct {
	Level string `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}
