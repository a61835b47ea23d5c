package parser

import "context"

// Span is one run of text with a uniform font size, as extracted from a page.
type Span struct {
	Text string
	Size float64 // Font size in device units
	Page int     // 1-based page number
}

// OutlineItem is one entry of a document's embedded table of contents.
type OutlineItem struct {
	Depth int    // 1 = top level
	Title string
	Page  int    // 1-based; 0 when the destination could not be resolved
}

// Document is an opened document. Implementations are not safe for
// concurrent use; each document is read by a single goroutine.
type Document interface {
	// Title returns the title recorded in the document metadata, or "".
	Title() string

	// NativeOutline returns the embedded outline in document order, depth
	// first. A document without one returns an empty slice and no error.
	NativeOutline() ([]OutlineItem, error)

	// NumPage returns the number of pages.
	NumPage() int

	// Page returns page num (1-based).
	Page(num int) Page

	// Close releases the underlying file handle.
	Close() error
}

// Page yields the text spans of a single page in reading order.
type Page interface {
	Spans() ([]Span, error)
}

// Opener opens documents of a given backend.
type Opener interface {
	Open(ctx context.Context, path string) (Document, error)
	Name() string
}
