package ingest

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
)

// glyph is one positioned run of text on a page, in PDF user space
type glyph struct {
	X, Y, W, Size float64
	S             string
}

// layoutLine is one visual line split into cells on wide horizontal gaps
type layoutLine struct {
	Y     float64
	Cells []string
}

// Text joins the cells of a line with single spaces
func (l layoutLine) Text() string {
	return strings.Join(l.Cells, " ")
}

const (
	defaultGlyphSize = 10.0
	// wordGapEm and cellGapEm are fractions of the font size
	wordGapEm = 0.15
	cellGapEm = 2.0
)

func glyphsFromContent(c pdf.Content) []glyph {
	out := make([]glyph, 0, len(c.Text))
	for _, t := range c.Text {
		out = append(out, glyph{X: t.X, Y: t.Y, W: t.W, Size: t.FontSize, S: t.S})
	}
	return out
}

func (g glyph) size() float64 {
	if g.Size <= 0 {
		return defaultGlyphSize
	}
	return g.Size
}

func (g glyph) width() float64 {
	if g.W > 0 {
		return g.W
	}
	return g.size() * 0.5 * float64(len([]rune(g.S)))
}

// groupLines clusters glyphs into lines top to bottom, then splits each
// line into cells wherever the horizontal gap is wide.
func groupLines(glyphs []glyph) []layoutLine {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := append([]glyph(nil), glyphs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var buckets [][]glyph
	var current []glyph
	for _, g := range sorted {
		if len(current) > 0 {
			anchor := current[0]
			tolerance := math.Max(anchor.size(), g.size()) * 0.5
			if math.Abs(anchor.Y-g.Y) > tolerance {
				buckets = append(buckets, current)
				current = nil
			}
		}
		current = append(current, g)
	}
	buckets = append(buckets, current)

	var lines []layoutLine
	for _, bucket := range buckets {
		if line, ok := splitCells(bucket); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

func splitCells(bucket []glyph) (layoutLine, bool) {
	sort.SliceStable(bucket, func(i, j int) bool { return bucket[i].X < bucket[j].X })

	line := layoutLine{Y: bucket[0].Y}
	var cell strings.Builder
	flush := func() {
		if s := audit.Clean(cell.String()); s != "" {
			line.Cells = append(line.Cells, s)
		}
		cell.Reset()
	}

	lastEnd := bucket[0].X
	for i, g := range bucket {
		gap := g.X - lastEnd
		switch {
		case i > 0 && gap > g.size()*cellGapEm:
			flush()
		case i > 0 && gap > g.size()*wordGapEm:
			cell.WriteByte(' ')
		}
		if strings.TrimSpace(g.S) == "" {
			cell.WriteByte(' ')
		} else {
			cell.WriteString(g.S)
		}
		lastEnd = math.Max(lastEnd, g.X+g.width())
	}
	flush()

	return line, len(line.Cells) > 0
}

// linesText renders lines as newline separated page text
func linesText(lines []layoutLine) string {
	texts := make([]string, 0, len(lines))
	for _, l := range lines {
		texts = append(texts, l.Text())
	}
	return strings.Join(texts, "\n")
}

// tableFromLines returns the rows of the first table on a page: every line
// from the column-title line onwards that still has at least two cells.
func tableFromLines(lines []layoutLine) audit.RawTable {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		if len(l.Cells) >= 2 {
			rows = append(rows, l.Cells)
		}
	}
	return tableAfterHeader(rows)
}
