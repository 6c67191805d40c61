package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRows(t *testing.T) {
	tests := []struct {
		name  string
		table RawTable
		want  []RelatedPartyRow
	}{
		{
			name:  "empty table",
			table: nil,
			want:  nil,
		},
		{
			name: "header row skipped and rows numbered",
			table: RawTable{
				{"Business / Person Name", "Criteria", "Transaction Type"},
				{" Partner A ", "1.a", "Sales"},
				{"Partner B", "2.c", "Loan"},
			},
			want: []RelatedPartyRow{
				{Number: 1, BusinessName: "Partner A", CriteriaCode: "1.a", TransactionType: "Sales"},
				{Number: 2, BusinessName: "Partner B", CriteriaCode: "2.c", TransactionType: "Loan"},
			},
		},
		{
			name: "first row kept when it is data",
			table: RawTable{
				{"Partner A", "1.a", "Sales"},
			},
			want: []RelatedPartyRow{
				{Number: 1, BusinessName: "Partner A", CriteriaCode: "1.a", TransactionType: "Sales"},
			},
		},
		{
			name: "short rows padded and blank rows dropped",
			table: RawTable{
				{"Name", "Code", "Type"},
				{"", "", ""},
				{"Partner C"},
				{" ", "\t"},
				{"Partner D", "1.b", "Rent", "extra"},
			},
			want: []RelatedPartyRow{
				{Number: 1, BusinessName: "Partner C"},
				{Number: 2, BusinessName: "Partner D", CriteriaCode: "1.b", TransactionType: "Rent"},
			},
		},
		{
			name:  "header only",
			table: RawTable{{"Business", "Criteria", "Transaction"}},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRows(tt.table))
		})
	}
}

func TestFormRows(t *testing.T) {
	fields := []FormField{
		{Label: "Company Name", Value: "Acme"},
		{Label: "Row3 Designates", Value: "2.b"},
		{Label: "Row1 Business Name", Value: "Partner A"},
		{Label: "row_1_criteria", Value: "1.A"},
		{Label: "Row 1 Transaction", Value: " Sales "},
		{Label: "Row2 Business Name", Value: ""},
		{Label: "Row2 Criteria", Value: "  "},
		{Label: "Row10 Business", Value: "Partner Ten"},
	}

	got := FormRows(fields)
	assert.Equal(t, []RelatedPartyRow{
		{Number: 1, BusinessName: "Partner A", CriteriaCode: "1.A", TransactionType: "Sales"},
		{Number: 2, CriteriaCode: "2.b"},
		{Number: 3, BusinessName: "Partner Ten"},
	}, got)
}

func TestNormalize_FormRowsTakePrecedence(t *testing.T) {
	x := Extraction{
		Form:  []FormField{{Label: "Row1 Business", Value: "Form Partner"}},
		Table: RawTable{{"Table Partner", "1.a", "Sales"}},
	}
	doc := Normalize(x)
	if assert.Len(t, doc.Rows, 1) {
		assert.Equal(t, "Form Partner", doc.Rows[0].BusinessName)
	}

	x.Form = nil
	doc = Normalize(x)
	if assert.Len(t, doc.Rows, 1) {
		assert.Equal(t, "Table Partner", doc.Rows[0].BusinessName)
	}
}
