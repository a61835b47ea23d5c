// Package pdftest writes small uncompressed PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"
)

// Line is one run of text drawn with the shared Helvetica font.
type Line struct {
	Text string
	Size float64
	X, Y float64
}

// Builder collects numbered objects and serialises them with a classic xref
// table. Object numbers start at 1.
type Builder struct {
	objs []string
}

// Reserve allocates an object number to be filled in later with Set.
func (b *Builder) Reserve() int {
	b.objs = append(b.objs, "")
	return len(b.objs)
}

// Set stores the body of a reserved object.
func (b *Builder) Set(num int, body string) {
	b.objs[num-1] = body
}

// Add appends an object and returns its number.
func (b *Builder) Add(body string) int {
	n := b.Reserve()
	b.Set(n, body)
	return n
}

// AddStream appends a stream object holding data.
func (b *Builder) AddStream(data string) int {
	return b.Add(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(data), data))
}

// Bytes renders the file. info may be 0 for no document information
// dictionary.
func (b *Builder) Bytes(root, info int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(b.objs))
	for i, body := range b.objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(b.objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	trailer := fmt.Sprintf("/Size %d /Root %s", len(b.objs)+1, Ref(root))
	if info > 0 {
		trailer += " /Info " + Ref(info)
	}
	fmt.Fprintf(&buf, "trailer\n<< %s >>\nstartxref\n%d\n%%%%EOF\n", trailer, xref)
	return buf.Bytes()
}

// Ref formats an indirect reference to object num.
func Ref(num int) string {
	return fmt.Sprintf("%d 0 R", num)
}

// Literal formats s as a PDF literal string.
func Literal(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return "(" + r.Replace(s) + ")"
}

// Content renders lines as a page content stream, one text object each.
func Content(lines ...Line) string {
	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "BT /F1 %g Tf %g %g Td %s Tj ET\n", l.Size, l.X, l.Y, Literal(l.Text))
	}
	return sb.String()
}

// Doc is a document with a single page tree. Catalog entries and outline
// objects may be added through B before WriteFile.
type Doc struct {
	B *Builder

	// Pages holds the object number of each page, in order.
	Pages []int

	// Catalog is appended verbatim inside the catalog dictionary.
	Catalog string

	// Title goes into the document information dictionary when set.
	Title string

	catalog int
	info    int
}

// NewDoc lays out one page per element of pages.
func NewDoc(pages ...[]Line) *Doc {
	b := &Builder{}
	d := &Doc{B: b, catalog: b.Reserve()}

	tree := b.Reserve()
	font := b.Add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	kids := make([]string, 0, len(pages))
	for _, lines := range pages {
		page := b.Reserve()
		content := b.AddStream(Content(lines...))
		b.Set(page, fmt.Sprintf(
			"<< /Type /Page /Parent %s /MediaBox [0 0 612 792] /Resources << /Font << /F1 %s >> >> /Contents %s >>",
			Ref(tree), Ref(font), Ref(content)))
		d.Pages = append(d.Pages, page)
		kids = append(kids, Ref(page))
	}
	b.Set(tree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids)))
	return d
}

// PageRef is the indirect reference to page n (1-based).
func (d *Doc) PageRef(n int) string {
	return Ref(d.Pages[n-1])
}

// Bytes finalises the catalog and renders the file.
func (d *Doc) Bytes() []byte {
	d.B.Set(d.catalog, fmt.Sprintf("<< /Type /Catalog /Pages %s %s>>", Ref(d.catalog+1), d.Catalog))
	if d.Title != "" && d.info == 0 {
		d.info = d.B.Add(fmt.Sprintf("<< /Title %s >>", Literal(d.Title)))
	}
	return d.B.Bytes(d.catalog, d.info)
}

// WriteFile renders the document to path.
func (d *Doc) WriteFile(tb testing.TB, path string) {
	tb.Helper()
	if err := os.WriteFile(path, d.Bytes(), 0o644); err != nil {
		tb.Fatalf("writing %s: %v", path, err)
	}
}
