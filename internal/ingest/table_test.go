package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
)

func TestIsColumnHeader(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  bool
	}{
		{"all three columns", []string{"Business Name", "Criteria Code", "Transaction Type"}, true},
		{"two columns", []string{"Name", "Designates"}, true},
		{"lower case", []string{"business", "transaction"}, true},
		{"company label row", []string{"Company Name", "Acme"}, false},
		{"single column", []string{"Criteria"}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isColumnHeader(tt.cells))
		})
	}
}

func TestTableAfterHeader(t *testing.T) {
	rows := [][]string{
		{"Company Name", "Acme"},
		{"Business Name", "Criteria Code", "Transaction Type"},
		{"Beta LLC", "1.a", "Sale"},
		{"Gamma", "2.c"},
	}

	got := tableAfterHeader(rows)
	assert.Equal(t, audit.RawTable{
		{"Business Name", "Criteria Code", "Transaction Type"},
		{"Beta LLC", "1.a", "Sale"},
		{"Gamma", "2.c"},
	}, got)

	// the result does not alias the input
	got[1][0] = "changed"
	assert.Equal(t, "Beta LLC", rows[2][0])

	assert.Nil(t, tableAfterHeader(rows[:1]))
}

func TestJoinRows(t *testing.T) {
	rows := [][]string{
		{"Company Name", "", " Acme "},
		{"", ""},
		{"Date", "01/15/2024"},
	}
	assert.Equal(t, "Company Name Acme\nDate 01/15/2024", joinRows(rows))
	assert.Equal(t, "", joinRows(nil))
}
