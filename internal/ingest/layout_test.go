package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
)

func TestGroupLines(t *testing.T) {
	glyphs := []glyph{
		// second line listed first; ordering comes from Y
		{X: 50, Y: 685.5, W: 20, Size: 10, S: "Acme"},
		{X: 200, Y: 685.5, W: 15, Size: 10, S: "1.a"},
		{X: 350, Y: 685.5, W: 20, Size: 10, S: "Sale"},

		{X: 50, Y: 700, W: 40, Size: 10, S: "Business"},
		{X: 95, Y: 700, W: 20, Size: 10, S: "Name"},
		{X: 200, Y: 700.3, W: 40, Size: 10, S: "Criteria"},
		{X: 245, Y: 700, W: 20, Size: 10, S: "Code"},
		{X: 350, Y: 700, W: 20, Size: 10, S: "Type"},
	}

	lines := groupLines(glyphs)
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"Business Name", "Criteria Code", "Type"}, lines[0].Cells)
	assert.Equal(t, []string{"Acme", "1.a", "Sale"}, lines[1].Cells)
	assert.Equal(t, "Business Name Criteria Code Type\nAcme 1.a Sale", linesText(lines))

	table := tableFromLines(lines)
	assert.Equal(t, audit.RawTable{
		{"Business Name", "Criteria Code", "Type"},
		{"Acme", "1.a", "Sale"},
	}, table)
}

func TestGroupLines_CharacterGlyphs(t *testing.T) {
	glyphs := []glyph{
		{X: 10, Y: 500, W: 5, Size: 10, S: "A"},
		{X: 15, Y: 500, W: 5, Size: 10, S: "B"},
		{X: 20, Y: 500, W: 5, Size: 10, S: " "},
		{X: 25, Y: 500, W: 5, Size: 10, S: "C"},
		// no width: estimated from the font size
		{X: 33, Y: 500, Size: 10, S: "D"},
	}

	lines := groupLines(glyphs)
	require.Len(t, lines, 1)
	assert.Equal(t, []string{"AB C D"}, lines[0].Cells)
}

func TestGroupLines_Empty(t *testing.T) {
	assert.Nil(t, groupLines(nil))
	assert.Empty(t, groupLines([]glyph{{X: 1, Y: 1, Size: 10, S: "   "}}))
}

func TestTableFromLines_NoColumnTitles(t *testing.T) {
	lines := []layoutLine{
		{Y: 700, Cells: []string{"Company Name", "Acme"}},
		{Y: 680, Cells: []string{"Completed By", "Jane Doe"}},
	}
	assert.Nil(t, tableFromLines(lines))
}
