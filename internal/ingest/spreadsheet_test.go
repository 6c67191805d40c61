package ingest

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
)

func setRows(t *testing.T, f *excelize.File, sheet string, rows [][]string) {
	t.Helper()
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}
}

var headerSheet = [][]string{
	{"Company Name", "Acme Corp"},
	{"Year / Period End", "2023"},
	{"Completed By", "Jane Doe"},
	{"Date", "01/15/2024"},
}

func TestXLSXLoader_TableSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	setRows(t, f, "Sheet1", headerSheet)
	_, err := f.NewSheet("Related Parties")
	require.NoError(t, err)
	setRows(t, f, "Related Parties", [][]string{
		{"Business Name", "Criteria Code", "Transaction Type"},
		{"Beta LLC", "1.a", "Sale"},
		{"Gamma Inc", "2.c", "Lease"},
	})

	path := filepath.Join(t.TempDir(), "audit.xlsx")
	require.NoError(t, f.SaveAs(path))

	x, err := NewXLSXLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "audit.xlsx", x.Source)
	assert.Contains(t, x.Pages["1"], "Company Name Acme Corp")
	assert.Contains(t, x.Pages["1"], "Date 01/15/2024")
	assert.Equal(t, audit.RawTable{
		{"Business Name", "Criteria Code", "Transaction Type"},
		{"Beta LLC", "1.a", "Sale"},
		{"Gamma Inc", "2.c", "Lease"},
	}, x.Table)
}

func TestXLSXLoader_SingleSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := append([][]string{}, headerSheet...)
	rows = append(rows,
		[]string{},
		[]string{"Business Name", "Criteria Code", "Transaction Type"},
		[]string{"Beta LLC", "1.a", "Sale"},
	)
	setRows(t, f, "Sheet1", rows)

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	x, err := NewXLSXLoader(nil).Read(context.Background(), bytes.NewReader(buf.Bytes()), "upload.xlsx")
	require.NoError(t, err)

	assert.Equal(t, "upload.xlsx", x.Source)
	require.Len(t, x.Table, 2)
	assert.Equal(t, []string{"Beta LLC", "1.a", "Sale"}, x.Table[1])
}

func TestXLSXLoader_UntitledTableSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	setRows(t, f, "Sheet1", headerSheet)
	_, err := f.NewSheet("Parties")
	require.NoError(t, err)
	setRows(t, f, "Parties", [][]string{
		{"Beta LLC", "1.a", "Sale"},
	})

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	x, err := NewXLSXLoader(nil).Read(context.Background(), buf, "untitled.xlsx")
	require.NoError(t, err)
	assert.Equal(t, audit.RawTable{{"Beta LLC", "1.a", "Sale"}}, x.Table)
}

func TestXLSXLoader_NotAWorkbook(t *testing.T) {
	_, err := NewXLSXLoader(nil).Read(context.Background(), strings.NewReader("plain text"), "bad.xlsx")
	assert.Error(t, err)
}

func TestCSVLoader(t *testing.T) {
	input := strings.Join([]string{
		"Company Name,Acme Corp",
		"Year / Period End,2023",
		"Completed By,Jane Doe",
		"Date,01/15/2024",
		"",
		"Business Name,Criteria Code,Transaction Type",
		`"Beta, LLC",1.a,Sale`,
		"Gamma Inc,2.c",
	}, "\n")

	x, err := NewCSVLoader(nil).Read(context.Background(), strings.NewReader(input), "audit.csv")
	require.NoError(t, err)

	assert.Equal(t, "audit.csv", x.Source)
	assert.True(t, strings.HasPrefix(x.Pages["1"], "Company Name Acme Corp\nYear / Period End 2023"))
	assert.Equal(t, audit.RawTable{
		{"Business Name", "Criteria Code", "Transaction Type"},
		{"Beta, LLC", "1.a", "Sale"},
		{"Gamma Inc", "2.c"},
	}, x.Table)
}

func TestCSVLoader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCSVLoader(nil).Read(ctx, strings.NewReader("a,b\n"), "x.csv")
	assert.ErrorIs(t, err, context.Canceled)
}
