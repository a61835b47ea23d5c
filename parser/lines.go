package parser

import (
	"math"
	"sort"
	"strings"
)

const (
	// rowTolerance is the maximum Y distance (points) for glyphs on one row.
	rowTolerance = 3.0

	// wordSpaceMultiplier times the font size is the gap that becomes a space.
	wordSpaceMultiplier = 0.3

	// sizeTolerance treats font sizes closer than this as equal.
	sizeTolerance = 0.05
)

// glyph is a positioned piece of text reported by a backend. Y grows upwards,
// as in PDF user space.
type glyph struct {
	S    string
	X, Y float64
	W    float64
	Size float64
}

// groupRows buckets glyphs by baseline and returns the rows top to bottom,
// each sorted left to right.
func groupRows(glyphs []glyph) [][]glyph {
	if len(glyphs) == 0 {
		return nil
	}

	type rowBucket struct {
		yMin, yMax float64
		glyphs     []glyph
	}

	var buckets []rowBucket
	for _, g := range glyphs {
		found := false
		for i := range buckets {
			if g.Y >= buckets[i].yMin-rowTolerance && g.Y <= buckets[i].yMax+rowTolerance {
				buckets[i].glyphs = append(buckets[i].glyphs, g)
				buckets[i].yMin = math.Min(buckets[i].yMin, g.Y)
				buckets[i].yMax = math.Max(buckets[i].yMax, g.Y)
				found = true
				break
			}
		}
		if !found {
			buckets = append(buckets, rowBucket{yMin: g.Y, yMax: g.Y, glyphs: []glyph{g}})
		}
	}

	// Top to bottom = higher Y first
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].yMax > buckets[j].yMax
	})

	rows := make([][]glyph, len(buckets))
	for i, b := range buckets {
		row := b.glyphs
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		rows[i] = row
	}
	return rows
}

// rowSpans splits a row into runs of uniform font size and joins each run's
// glyphs, inserting a space where the horizontal gap is wider than a word
// space. Runs that hold only whitespace are dropped.
func rowSpans(row []glyph, page int) []Span {
	var spans []Span
	var b strings.Builder
	var size, end float64
	started := false

	flush := func() {
		if started && strings.TrimSpace(b.String()) != "" {
			spans = append(spans, Span{Text: b.String(), Size: size, Page: page})
		}
		b.Reset()
		started = false
	}

	for _, g := range row {
		if started && math.Abs(g.Size-size) > sizeTolerance {
			flush()
		}
		if !started {
			size = g.Size
			started = true
		} else if gap := g.X - end; gap > wordSpaceMultiplier*size {
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		end = g.X + g.W
	}
	flush()
	return spans
}

// glyphSpans turns the glyphs of one page into spans in reading order.
func glyphSpans(glyphs []glyph, page int) []Span {
	var spans []Span
	for _, row := range groupRows(glyphs) {
		spans = append(spans, rowSpans(row, page)...)
	}
	return spans
}
