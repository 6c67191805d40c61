package ingest

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func writeDOCX(t *testing.T, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.docx")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	zw := zip.NewWriter(file)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func para(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

func tableRow(cells ...string) string {
	out := "<w:tr>"
	for _, c := range cells {
		out += "<w:tc>" + para(c) + "</w:tc>"
	}
	return out + "</w:tr>"
}

func TestDOCXLoader(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document ` + wordNS + `><w:body>` +
		para("AUDIT SUPPORT FORM") +
		para("Company Name: Acme Corp") +
		`<w:p><w:r><w:t>Date</w:t></w:r><w:r><w:tab/><w:t>01/15/2024</w:t></w:r></w:p>` +
		`<w:tbl>` +
		tableRow("Business Name", "Criteria Code", "Transaction Type") +
		tableRow("Beta LLC", "1.a", "Sale") +
		tableRow("Gamma Inc", "", "Lease") +
		`</w:tbl>` +
		para("Completed By: Jane Doe") +
		`</w:body></w:document>`

	path := writeDOCX(t, map[string]string{"word/document.xml": body})

	x, err := NewDOCXLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "audit.docx", x.Source)
	assert.Equal(t, "AUDIT SUPPORT FORM\n"+
		"Company Name: Acme Corp\n"+
		"Date 01/15/2024\n"+
		"Business Name Criteria Code Transaction Type\n"+
		"Beta LLC 1.a Sale\n"+
		"Gamma Inc Lease\n"+
		"Completed By: Jane Doe", x.Pages["1"])
	assert.Equal(t, audit.RawTable{
		{"Business Name", "Criteria Code", "Transaction Type"},
		{"Beta LLC", "1.a", "Sale"},
		{"Gamma Inc", "", "Lease"},
	}, x.Table)
}

func TestDOCXLoader_SkipsLayoutTables(t *testing.T) {
	body := `<w:document ` + wordNS + `><w:body>` +
		`<w:tbl>` + tableRow("Company Name", "Acme Corp") + `</w:tbl>` +
		`<w:tbl>` +
		tableRow("Name", "Designates", "Transaction") +
		`<w:tr><w:tc>` + para("Beta") + `<w:tbl>` + tableRow("nested") + `</w:tbl></w:tc>` +
		`<w:tc>` + para("1.b") + `</w:tc><w:tc>` + para("Loan") + `</w:tc></w:tr>` +
		`</w:tbl>` +
		`</w:body></w:document>`

	path := writeDOCX(t, map[string]string{"word/document.xml": body})

	x, err := NewDOCXLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Contains(t, x.Pages["1"], "Company Name Acme Corp")
	assert.Equal(t, audit.RawTable{
		{"Name", "Designates", "Transaction"},
		{"Beta nested", "1.b", "Loan"},
	}, x.Table)
}

func TestDOCXLoader_Errors(t *testing.T) {
	t.Run("missing body part", func(t *testing.T) {
		path := writeDOCX(t, map[string]string{"word/styles.xml": "<styles/>"})
		_, err := NewDOCXLoader(nil).Load(context.Background(), path)
		assert.ErrorContains(t, err, "word/document.xml")
	})

	t.Run("not a zip archive", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plain.docx")
		require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))
		_, err := NewDOCXLoader(nil).Load(context.Background(), path)
		assert.Error(t, err)
	})

	t.Run("malformed xml", func(t *testing.T) {
		path := writeDOCX(t, map[string]string{"word/document.xml": "<w:document><w:body>"})
		_, err := NewDOCXLoader(nil).Load(context.Background(), path)
		assert.Error(t, err)
	})
}
