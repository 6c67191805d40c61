package ingest

import (
	"strings"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
)

// columnTitles groups the words that name each related-party column. A row
// naming at least two of the columns is taken as the table's title row.
var columnTitles = [][]string{
	{"business", "name"},
	{"criteria", "code", "designates"},
	{"transaction", "type"},
}

const minTitledColumns = 2

func isColumnHeader(cells []string) bool {
	joined := strings.ToLower(strings.Join(cells, " "))
	hits := 0
	for _, words := range columnTitles {
		for _, w := range words {
			if strings.Contains(joined, w) {
				hits++
				break
			}
		}
	}
	return hits >= minTitledColumns
}

// tableAfterHeader returns the title row and every row after it, or nil
// when no title row exists.
func tableAfterHeader(rows [][]string) audit.RawTable {
	for i, row := range rows {
		if !isColumnHeader(row) {
			continue
		}
		table := make(audit.RawTable, 0, len(rows)-i)
		for _, r := range rows[i:] {
			table = append(table, append([]string(nil), r...))
		}
		return table
	}
	return nil
}

// joinRows renders rows as page text, one line per row with blank cells
// dropped.
func joinRows(rows [][]string) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var cells []string
		for _, c := range row {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " "))
		}
	}
	return strings.Join(lines, "\n")
}
