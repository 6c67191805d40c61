package audit

import (
	"sort"
	"strconv"
	"strings"
)

// headerRowWords mark the first table row as column titles
var headerRowWords = []string{"name", "criteria", "transaction", "type", "business"}

// ExtractRows maps a raw table onto related-party rows. A header row is
// skipped, short rows are padded, blank rows are dropped and the survivors
// are numbered from 1.
func ExtractRows(table RawTable) []RelatedPartyRow {
	if len(table) == 0 {
		return nil
	}

	start := 0
	if isHeaderRow(table[0]) {
		start = 1
	}

	var rows []RelatedPartyRow
	for _, raw := range table[start:] {
		cells := make([]string, len(RowFields))
		for i := range cells {
			if i < len(raw) {
				cells[i] = strings.TrimSpace(raw[i])
			}
		}
		row := RelatedPartyRow{
			BusinessName:    cells[0],
			CriteriaCode:    cells[1],
			TransactionType: cells[2],
		}
		if !row.Filled() {
			continue
		}
		row.Number = len(rows) + 1
		rows = append(rows, row)
	}
	return rows
}

func isHeaderRow(cells []string) bool {
	joined := strings.ToLower(strings.Join(cells, " "))
	for _, w := range headerRowWords {
		if strings.Contains(joined, w) {
			return true
		}
	}
	return false
}

// FormRows collects related-party rows from form fields labelled "row N".
// The column is chosen from the label wording; rows come back ordered by N
// and renumbered from 1.
func FormRows(fields []FormField) []RelatedPartyRow {
	byIndex := map[int]*RelatedPartyRow{}
	for _, ff := range fields {
		label := strings.ToLower(ff.Label)
		m := rowLabelPattern.FindStringSubmatch(label)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		row, ok := byIndex[n]
		if !ok {
			row = &RelatedPartyRow{}
			byIndex[n] = row
		}
		value := strings.TrimSpace(ff.Value)
		switch {
		case strings.Contains(label, "business"):
			if row.BusinessName == "" {
				row.BusinessName = value
			}
		case strings.Contains(label, "criteria"), strings.Contains(label, "designates"):
			if row.CriteriaCode == "" {
				row.CriteriaCode = value
			}
		case strings.Contains(label, "transaction"):
			if row.TransactionType == "" {
				row.TransactionType = value
			}
		}
	}

	indexes := make([]int, 0, len(byIndex))
	for n := range byIndex {
		indexes = append(indexes, n)
	}
	sort.Ints(indexes)

	var rows []RelatedPartyRow
	for _, n := range indexes {
		row := *byIndex[n]
		if !row.Filled() {
			continue
		}
		row.Number = len(rows) + 1
		rows = append(rows, row)
	}
	return rows
}
