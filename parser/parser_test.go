package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// ---------------------------------------------------------------------------
// Registry tests
// ---------------------------------------------------------------------------

func TestRegistryBuiltInBackends(t *testing.T) {
	reg := NewRegistry()

	o, err := reg.Get(BackendPDF)
	if err != nil {
		t.Fatalf("Get(%q) returned error: %v", BackendPDF, err)
	}
	if _, ok := o.(*PDFParser); !ok {
		t.Errorf("Get(%q) = %T, want *PDFParser", BackendPDF, o)
	}
	if o.Name() != BackendPDF {
		t.Errorf("Name() = %q, want %q", o.Name(), BackendPDF)
	}
}

func TestRegistryUnknown(t *testing.T) {
	reg := NewRegistry()

	for _, name := range []string{"docx", "tabula", "memory", ""} {
		t.Run("backend_"+name, func(t *testing.T) {
			o, err := reg.Get(name)
			if err == nil {
				t.Errorf("Get(%q) expected error, got %T", name, o)
			}
			if o != nil {
				t.Errorf("Get(%q) expected nil opener", name)
			}
		})
	}
}

func TestRegistryCustomBackend(t *testing.T) {
	reg := NewRegistry()

	if _, err := reg.Get(BackendMemory); err == nil {
		t.Fatal("expected error for unregistered backend")
	}

	mem := NewMemoryOpener()
	reg.Register(mem.Name(), mem)
	o, err := reg.Get(BackendMemory)
	if err != nil {
		t.Fatalf("Get(%q) after Register returned error: %v", BackendMemory, err)
	}
	if o != mem {
		t.Error("Get returned a different opener than registered")
	}

	got := reg.Backends()
	want := []string{BackendMemory, BackendPDF}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Backends() = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// Glyph grouping tests
// ---------------------------------------------------------------------------

// word lays out s as one glyph per rune starting at x, each w wide.
func word(s string, x, y, size float64) []glyph {
	w := size * 0.5
	var out []glyph
	for _, r := range s {
		out = append(out, glyph{S: string(r), X: x, Y: y, W: w, Size: size})
		x += w
	}
	return out
}

func TestGroupRowsOrdersTopToBottom(t *testing.T) {
	var glyphs []glyph
	glyphs = append(glyphs, word("low", 10, 100, 10)...)
	glyphs = append(glyphs, word("high", 10, 700, 10)...)
	glyphs = append(glyphs, word("mid", 10, 400, 10)...)

	rows := groupRows(glyphs)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, want := range []string{"h", "m", "l"} {
		if rows[i][0].S != want {
			t.Errorf("row %d starts with %q, want %q", i, rows[i][0].S, want)
		}
	}
}

func TestGroupRowsToleratesBaselineJitter(t *testing.T) {
	glyphs := []glyph{
		{S: "b", X: 20, Y: 501.5, W: 5, Size: 10},
		{S: "a", X: 10, Y: 500, W: 5, Size: 10},
		{S: "c", X: 30, Y: 499, W: 5, Size: 10},
	}
	rows := groupRows(glyphs)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	got := rows[0][0].S + rows[0][1].S + rows[0][2].S
	if got != "abc" {
		t.Errorf("row order = %q, want %q", got, "abc")
	}
}

func TestGlyphSpans(t *testing.T) {
	var glyphs []glyph
	// Heading row at size 18.
	glyphs = append(glyphs, word("Chapter", 50, 700, 18)...)
	glyphs = append(glyphs, word("One", 50+7*9+8, 700, 18)...)
	// Body row with a size change mid-row.
	glyphs = append(glyphs, word("Body", 50, 650, 10)...)
	glyphs = append(glyphs, word("Note", 50+4*5, 650, 8)...)

	spans := glyphSpans(glyphs, 3)
	want := []Span{
		{Text: "Chapter One", Size: 18, Page: 3},
		{Text: "Body", Size: 10, Page: 3},
		{Text: "Note", Size: 8, Page: 3},
	}
	if len(spans) != len(want) {
		t.Fatalf("glyphSpans = %+v, want %+v", spans, want)
	}
	for i := range want {
		if spans[i] != want[i] {
			t.Errorf("span %d = %+v, want %+v", i, spans[i], want[i])
		}
	}
}

func TestRowSpansDropsWhitespaceRuns(t *testing.T) {
	row := []glyph{
		{S: " ", X: 0, Y: 0, W: 3, Size: 12},
		{S: "x", X: 10, Y: 0, W: 3, Size: 10},
	}
	spans := rowSpans(row, 1)
	if len(spans) != 1 || spans[0].Text != "x" {
		t.Errorf("rowSpans = %+v", spans)
	}
}

func TestGlyphSpansEmpty(t *testing.T) {
	if spans := glyphSpans(nil, 1); len(spans) != 0 {
		t.Errorf("expected no spans, got %+v", spans)
	}
}

// ---------------------------------------------------------------------------
// Memory backend tests
// ---------------------------------------------------------------------------

func TestMemoryOpener(t *testing.T) {
	doc := &MemoryDocument{
		DocTitle: "Memo",
		Outline:  []OutlineItem{{Depth: 1, Title: "Intro", Page: 1}},
		Pages: [][]Span{
			{{Text: "a", Size: 10}},
			{{Text: "b", Size: 12, Page: 99}},
		},
	}
	op := NewMemoryOpener()
	op.Add("memo.pdf", doc)

	d, err := op.Open(context.Background(), "memo.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if d.Title() != "Memo" || d.NumPage() != 2 {
		t.Errorf("unexpected document: title=%q pages=%d", d.Title(), d.NumPage())
	}
	items, _ := d.NativeOutline()
	if len(items) != 1 || items[0].Title != "Intro" {
		t.Errorf("NativeOutline = %+v", items)
	}

	spans, err := d.Page(2).Spans()
	if err != nil {
		t.Fatal(err)
	}
	if spans[0].Page != 2 {
		t.Errorf("span page = %d, want 2", spans[0].Page)
	}
	if _, err := d.Page(3).Spans(); err == nil {
		t.Error("expected error for out-of-range page")
	}
	if doc.PageReads() != 2 {
		t.Errorf("PageReads = %d, want 2", doc.PageReads())
	}

	d.Close()
	if !doc.Closed() {
		t.Error("Close not recorded")
	}
	if op.Opens("memo.pdf") != 1 {
		t.Errorf("Opens = %d, want 1", op.Opens("memo.pdf"))
	}

	if _, err := op.Open(context.Background(), "other.pdf"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestMemoryOpenerCancelled(t *testing.T) {
	op := NewMemoryOpener()
	op.Add("a.pdf", &MemoryDocument{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := op.Open(ctx, "a.pdf"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// PDF backend tests
// ---------------------------------------------------------------------------

func TestPDFParserRejectsNonPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fake.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := &PDFParser{}
	if _, err := p.Open(context.Background(), path); err == nil {
		t.Error("expected error opening a non-PDF file")
	}
	if _, err := p.Open(context.Background(), filepath.Join(dir, "missing.pdf")); err == nil {
		t.Error("expected error opening a missing file")
	}
}
