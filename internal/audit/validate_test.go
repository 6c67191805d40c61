package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullHeaderText = "Company Name: Acme Corp\nYear: 2023\nCompleted By: John Doe\nDate: 01/01/2023"

func validHeader() HeaderRecord {
	return HeaderRecord{
		FieldCompanyName:   "Acme Corp",
		FieldYearPeriodEnd: "2023",
		FieldCompletedBy:   "John Doe",
		FieldDate:          "01/01/2023",
	}
}

func TestProcess_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		x           Extraction
		wantOverall Overall
		check       func(t *testing.T, v DocumentVerdict)
	}{
		{
			name:        "complete header and no rows passes",
			x:           Extraction{Pages: pages(fullHeaderText)},
			wantOverall: OverallPass,
			check: func(t *testing.T, v DocumentVerdict) {
				assert.Empty(t, v.Rows)
				assert.Empty(t, v.Errors)
				assert.Equal(t, []string{msgNoRelatedRows}, v.Notes)
			},
		},
		{
			name:        "missing date is a partial pass",
			x:           Extraction{Pages: pages("Company Name: Acme Corp\nYear: 2023\nCompleted By: John Doe")},
			wantOverall: OverallPartialPass,
			check: func(t *testing.T, v DocumentVerdict) {
				date := v.Header[FieldDate]
				assert.Equal(t, StatusNotFound, date.Status)
				assert.Nil(t, date.Value)
				require.NotNil(t, date.Error)
				assert.Equal(t, msgNotFound, *date.Error)
			},
		},
		{
			name:        "three digit year fails",
			x:           Extraction{Pages: pages("Company Name: Acme Corp\nYear: 202\nCompleted By: John Doe\nDate: 01/01/2023")},
			wantOverall: OverallFail,
			check: func(t *testing.T, v DocumentVerdict) {
				year := v.Header[FieldYearPeriodEnd]
				assert.Equal(t, StatusFoundInvalid, year.Status)
				require.NotNil(t, year.Value)
				assert.Equal(t, "202", *year.Value)
			},
		},
		{
			name: "bad criteria code fails",
			x: Extraction{
				Pages: pages(fullHeaderText),
				Table: RawTable{{"Partner A", "3.z", "Sales"}},
			},
			wantOverall: OverallFail,
			check: func(t *testing.T, v DocumentVerdict) {
				require.Len(t, v.Rows, 1)
				row := v.Rows[0]
				assert.Equal(t, 1, row.RowNumber)
				assert.Equal(t, OverallFail, row.RowStatus)
				assert.Equal(t, StatusFoundValid, row.Fields[FieldBusinessName].Status)
				assert.Equal(t, StatusFoundInvalid, row.Fields[FieldCriteriaCode].Status)
				assert.Equal(t, StatusFoundValid, row.Fields[FieldTransactionType].Status)
				assert.Contains(t, v.Errors, "Row 1 Criteria Code: Criteria Code must be in the form '1.a' to '2.f'.")
			},
		},
		{
			name:        "alternate labels without audit keywords pass",
			x:           Extraction{Pages: pages("Client Name: Acme Corp\nFiscal Year End: 2023\nPrepared By: John Doe\nDate: 01/01/2023")},
			wantOverall: OverallPass,
		},
		{
			name:        "preparer and date alone are not insufficient data",
			x:           Extraction{Pages: pages("Prepared By: John Doe\nDate: 01/01/2023")},
			wantOverall: OverallPartialPass,
			check: func(t *testing.T, v DocumentVerdict) {
				assert.Equal(t, StatusNotFound, v.Header[FieldCompanyName].Status)
				assert.Equal(t, StatusFoundValid, v.Header[FieldDate].Status)
			},
		},
		{
			name: "period end date label keeps both dates apart",
			x: Extraction{
				Pages: pages("Company Name: Acme Corp\nYear / Period End Date: 12/31/2023\nCompleted By: John Doe\nDate: 01/05/2024"),
				Table: RawTable{{"Partner A", "1.a", "Sales"}},
			},
			wantOverall: OverallPass,
			check: func(t *testing.T, v DocumentVerdict) {
				require.NotNil(t, v.Header[FieldYearPeriodEnd].Value)
				assert.Equal(t, "12/31/2023", *v.Header[FieldYearPeriodEnd].Value)
				require.NotNil(t, v.Header[FieldDate].Value)
				assert.Equal(t, "01/05/2024", *v.Header[FieldDate].Value)
			},
		},
		{
			name:        "nothing extracted is insufficient data",
			x:           Extraction{},
			wantOverall: OverallInsufficientData,
			check: func(t *testing.T, v DocumentVerdict) {
				assert.Empty(t, v.Header)
				assert.Empty(t, v.Rows)
				assert.Len(t, v.Errors, 1)
			},
		},
		{
			name:        "label bleed leaves company not found",
			x:           Extraction{Pages: pages("Company Name: Year Period End:" + padding)},
			wantOverall: OverallPartialPass,
			check: func(t *testing.T, v DocumentVerdict) {
				assert.Equal(t, StatusNotFound, v.Header[FieldCompanyName].Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Process(tt.x, DefaultPolicy())
			assert.Equal(t, tt.wantOverall, v.OverallStatus)
			if tt.check != nil {
				tt.check(t, v)
			}
		})
	}
}

func TestValidateField(t *testing.T) {
	v := NewValidator(DefaultPolicy())

	fv := v.ValidateField(FieldCriteriaCode, " 1.A ")
	assert.Equal(t, StatusFoundValid, fv.Status)
	require.NotNil(t, fv.Value)
	assert.Equal(t, "1.a", *fv.Value)
	assert.Nil(t, fv.Error)

	fv = v.ValidateField(FieldCompanyName, "  Acme   Corp: ")
	assert.Equal(t, StatusFoundValid, fv.Status)
	assert.Equal(t, "Acme Corp", *fv.Value)

	fv = v.ValidateField(FieldCompletedBy, " : ")
	assert.Equal(t, StatusNotFound, fv.Status)
	assert.Nil(t, fv.Value)

	fv = v.ValidateField(FieldDate, "2023-01-01")
	assert.Equal(t, StatusFoundInvalid, fv.Status)
	assert.Equal(t, "2023-01-01", *fv.Value)
	require.NotNil(t, fv.Error)
	assert.Equal(t, "Date must be in MM/DD/YYYY format.", *fv.Error)
}

func TestWorstLattice(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Overall
	}{
		{name: "empty", statuses: nil, want: OverallPass},
		{name: "all valid", statuses: []Status{StatusFoundValid, StatusFoundValid}, want: OverallPass},
		{name: "one missing", statuses: []Status{StatusFoundValid, StatusNotFound}, want: OverallPartialPass},
		{name: "invalid beats missing", statuses: []Status{StatusNotFound, StatusFoundInvalid, StatusNotFound}, want: OverallFail},
		{name: "invalid beats valid", statuses: []Status{StatusFoundInvalid, StatusFoundValid}, want: OverallFail},
		{name: "order does not matter", statuses: []Status{StatusFoundValid, StatusFoundInvalid}, want: OverallFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Worst(tt.statuses...))
		})
	}
}

func TestValidate_RowsAndNumbering(t *testing.T) {
	doc := Document{
		Header: validHeader(),
		Rows: []RelatedPartyRow{
			{Number: 1, BusinessName: "Partner A", CriteriaCode: "1.a", TransactionType: "Sales"},
			{Number: 2},
			{Number: 3, BusinessName: "Partner B", CriteriaCode: "2.F", TransactionType: ""},
		},
	}

	v := Validate(doc)
	assert.Equal(t, OverallPartialPass, v.OverallStatus)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, 1, v.Rows[0].RowNumber)
	assert.Equal(t, OverallPass, v.Rows[0].RowStatus)
	assert.Equal(t, 2, v.Rows[1].RowNumber)
	assert.Equal(t, OverallPartialPass, v.Rows[1].RowStatus)
	assert.Equal(t, "2.f", *v.Rows[1].Fields[FieldCriteriaCode].Value)
	assert.Equal(t, []string{"Row 2 Transaction Type: " + msgNotFound}, v.Errors)
	assert.Empty(t, v.Notes)
}

func TestValidate_ZeroRowsNeverDowngrades(t *testing.T) {
	v := Validate(Document{Header: validHeader()})
	assert.Equal(t, OverallPass, v.OverallStatus)
	assert.Equal(t, []string{msgNoRelatedRows}, v.Notes)
}

func TestValidate_MinRowsPolicy(t *testing.T) {
	validator := NewValidator(Policy{YearPolicy: YearPolicyCalendar, MinRows: 2})

	v := validator.Validate(Document{
		Header: validHeader(),
		Rows:   []RelatedPartyRow{{BusinessName: "Partner A", CriteriaCode: "1.a", TransactionType: "Sales"}},
	})
	assert.Equal(t, OverallFail, v.OverallStatus)
	require.Len(t, v.SectionErrors, 1)
	assert.Contains(t, v.Errors, v.SectionErrors[0])
	assert.Empty(t, v.Notes)

	v = validator.Validate(Document{
		Header: validHeader(),
		Rows: []RelatedPartyRow{
			{BusinessName: "Partner A", CriteriaCode: "1.a", TransactionType: "Sales"},
			{BusinessName: "Partner B", CriteriaCode: "1.b", TransactionType: "Loan"},
		},
	})
	assert.Equal(t, OverallPass, v.OverallStatus)
	assert.Empty(t, v.SectionErrors)
}

func TestValidate_YearPolicy(t *testing.T) {
	header := validHeader()
	header[FieldYearPeriodEnd] = "September 30, 2024"
	doc := Document{Header: header}

	assert.Equal(t, OverallPass, NewValidator(Policy{YearPolicy: YearPolicyCalendar}).Validate(doc).OverallStatus)
	assert.Equal(t, OverallFail, NewValidator(Policy{YearPolicy: YearPolicyStrict}).Validate(doc).OverallStatus)
}

func TestProcess_IsDeterministic(t *testing.T) {
	x := Extraction{
		Pages: PageText{
			"2":  "Company Name: Second Page Co\nAudit Date: 02/02/2022",
			"1":  "Audit of Company\nYear Period End: 2022",
			"10": "Company Name: Late Co\nYear note\nPrepared By: AG",
		},
		Table: RawTable{
			{"Name", "Criteria", "Transaction Type"},
			{"Partner A", "1.a", "Sales"},
			{"Partner B", "9.9", "Loan"},
		},
	}

	first := Process(x, DefaultPolicy())
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Process(x, DefaultPolicy()))
	}
	assert.Equal(t, "Second Page Co", *first.Header[FieldCompanyName].Value)
	assert.Equal(t, "AG", *first.Header[FieldCompletedBy].Value)
	assert.Equal(t, OverallFail, first.OverallStatus)
}
