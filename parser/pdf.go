package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// maxOutlineItems bounds outline walks over malformed (cyclic) trees.
	maxOutlineItems = 10000

	// maxDestHops bounds indirection through named destinations.
	maxDestHops = 4
)

// PDFParser opens PDF files with github.com/ledongthuc/pdf.
type PDFParser struct{}

func (p *PDFParser) Name() string { return BackendPDF }

func (p *PDFParser) Open(ctx context.Context, path string) (doc Document, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The reader panics on some malformed files instead of returning errors.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("opening PDF: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	if reader.NumPage() == 0 {
		f.Close()
		return nil, fmt.Errorf("opening PDF: document has no pages")
	}
	return &pdfDocument{file: f, reader: reader}, nil
}

type pdfDocument struct {
	file   *os.File
	reader *pdf.Reader

	// pageIndex maps a page dictionary fingerprint to its page number.
	pageIndex map[string]int
}

func (d *pdfDocument) Title() (title string) {
	defer func() {
		if recover() != nil {
			title = ""
		}
	}()
	return strings.TrimSpace(d.reader.Trailer().Key("Info").Key("Title").Text())
}

func (d *pdfDocument) NumPage() int { return d.reader.NumPage() }

func (d *pdfDocument) Page(num int) Page {
	return pdfPage{page: d.reader.Page(num), num: num}
}

func (d *pdfDocument) Close() error {
	return d.file.Close()
}

func (d *pdfDocument) NativeOutline() (items []OutlineItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			items, err = nil, fmt.Errorf("reading outline: %v", r)
		}
	}()

	root := d.reader.Trailer().Key("Root")
	seen := make(map[string]bool)
	d.walkOutline(root, root.Key("Outlines").Key("First"), 1, seen, &items)
	return items, nil
}

// walkOutline appends item and its siblings (depth first) to items.
func (d *pdfDocument) walkOutline(root, item pdf.Value, depth int, seen map[string]bool, items *[]OutlineItem) {
	for ; item.Kind() == pdf.Dict; item = item.Key("Next") {
		// Outline dictionaries carry their own /Prev and /Next references,
		// so the printed form identifies a node.
		key := item.String()
		if seen[key] || len(*items) >= maxOutlineItems {
			return
		}
		seen[key] = true

		*items = append(*items, OutlineItem{
			Depth: depth,
			Title: item.Key("Title").Text(),
			Page:  d.destPage(root, item),
		})
		d.walkOutline(root, item.Key("First"), depth+1, seen, items)
	}
}

// destPage resolves the page an outline item points at, or 0.
func (d *pdfDocument) destPage(root, item pdf.Value) int {
	dest := item.Key("Dest")
	if dest.Kind() == pdf.Null {
		action := item.Key("A")
		if action.Key("S").Name() != "GoTo" {
			return 0
		}
		dest = action.Key("D")
	}
	return d.resolveDest(root, dest, 0)
}

func (d *pdfDocument) resolveDest(root, dest pdf.Value, hops int) int {
	if hops > maxDestHops {
		return 0
	}

	switch dest.Kind() {
	case pdf.Array:
		if dest.Len() == 0 {
			return 0
		}
		target := dest.Index(0)
		if target.Kind() == pdf.Integer {
			// Page index form, 0-based.
			return int(target.Int64()) + 1
		}
		return d.pageNumber(target)
	case pdf.Dict:
		return d.resolveDest(root, dest.Key("D"), hops+1)
	case pdf.Name:
		return d.resolveDest(root, root.Key("Dests").Key(dest.Name()), hops+1)
	case pdf.String:
		named := nameTreeLookup(root.Key("Names").Key("Dests"), dest.Text(), 0)
		if named.Kind() == pdf.Null {
			named = root.Key("Dests").Key(dest.Text())
		}
		return d.resolveDest(root, named, hops+1)
	}
	return 0
}

// pageNumber maps a page dictionary to its 1-based number, or 0.
func (d *pdfDocument) pageNumber(page pdf.Value) int {
	if page.Kind() != pdf.Dict {
		return 0
	}
	if d.pageIndex == nil {
		d.pageIndex = make(map[string]int, d.reader.NumPage())
		for i := 1; i <= d.reader.NumPage(); i++ {
			v := d.reader.Page(i).V
			if v.IsNull() {
				continue
			}
			d.pageIndex[v.String()] = i
		}
	}
	return d.pageIndex[page.String()]
}

// nameTreeLookup finds key in a PDF name tree.
func nameTreeLookup(node pdf.Value, key string, depth int) pdf.Value {
	if node.Kind() != pdf.Dict || depth > 32 {
		return pdf.Value{}
	}
	if names := node.Key("Names"); names.Kind() == pdf.Array {
		for i := 0; i+1 < names.Len(); i += 2 {
			if names.Index(i).Text() == key {
				return names.Index(i + 1)
			}
		}
	}
	kids := node.Key("Kids")
	for i := 0; i < kids.Len(); i++ {
		if v := nameTreeLookup(kids.Index(i), key, depth+1); v.Kind() != pdf.Null {
			return v
		}
	}
	return pdf.Value{}
}

type pdfPage struct {
	page pdf.Page
	num  int
}

func (p pdfPage) Spans() (spans []Span, err error) {
	if p.page.V.IsNull() {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			spans, err = nil, fmt.Errorf("reading page %d: %v", p.num, r)
		}
	}()

	content := p.page.Content()
	glyphs := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" || t.S == "\n" {
			continue
		}
		glyphs = append(glyphs, glyph{S: t.S, X: t.X, Y: t.Y, W: t.W, Size: t.FontSize})
	}
	return glyphSpans(glyphs, p.num), nil
}
