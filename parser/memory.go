package parser

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// BackendMemory is the name MemoryOpener registers under by default.
const BackendMemory = "memory"

// MemoryDocument is an in-memory document, used to run the pipeline without
// touching PDF files.
type MemoryDocument struct {
	DocTitle string
	Outline  []OutlineItem
	Pages    [][]Span // Pages[i] holds the spans of page i+1

	// PageErr, when set, is returned by every page's Spans.
	PageErr error

	mu        sync.Mutex
	pageReads int
	closed    bool
}

func (d *MemoryDocument) Title() string { return d.DocTitle }

func (d *MemoryDocument) NativeOutline() ([]OutlineItem, error) {
	out := make([]OutlineItem, len(d.Outline))
	copy(out, d.Outline)
	return out, nil
}

func (d *MemoryDocument) NumPage() int { return len(d.Pages) }

func (d *MemoryDocument) Page(num int) Page {
	return memoryPage{doc: d, num: num}
}

func (d *MemoryDocument) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

// PageReads reports how many times page spans were requested.
func (d *MemoryDocument) PageReads() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pageReads
}

// Closed reports whether Close has been called.
func (d *MemoryDocument) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

type memoryPage struct {
	doc *MemoryDocument
	num int
}

func (p memoryPage) Spans() ([]Span, error) {
	p.doc.mu.Lock()
	p.doc.pageReads++
	p.doc.mu.Unlock()

	if p.doc.PageErr != nil {
		return nil, p.doc.PageErr
	}
	if p.num < 1 || p.num > len(p.doc.Pages) {
		return nil, fmt.Errorf("page %d out of range", p.num)
	}
	spans := make([]Span, len(p.doc.Pages[p.num-1]))
	copy(spans, p.doc.Pages[p.num-1])
	for i := range spans {
		spans[i].Page = p.num
	}
	return spans, nil
}

// MemoryOpener serves MemoryDocuments by path. Paths without a document
// fail to open with os.ErrNotExist.
type MemoryOpener struct {
	mu    sync.Mutex
	docs  map[string]*MemoryDocument
	opens map[string]int
}

func NewMemoryOpener() *MemoryOpener {
	return &MemoryOpener{
		docs:  make(map[string]*MemoryDocument),
		opens: make(map[string]int),
	}
}

func (o *MemoryOpener) Name() string { return BackendMemory }

// Add registers doc under path.
func (o *MemoryOpener) Add(path string, doc *MemoryDocument) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.docs[path] = doc
}

func (o *MemoryOpener) Open(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	doc, ok := o.docs[path]
	if !ok {
		return nil, fmt.Errorf("opening %s: %w", path, os.ErrNotExist)
	}
	o.opens[path]++
	return doc, nil
}

// Opens reports how many times path was opened.
func (o *MemoryOpener) Opens(path string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens[path]
}
