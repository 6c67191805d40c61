package ingest

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
)

const (
	docxBody = "word/document.xml"
	// maxDocumentXML caps the decompressed body part
	maxDocumentXML = 64 << 20
)

// DOCXLoader reads the main document part of a Word file. Paragraphs and
// table rows become the text of page "1"; the first table with column
// titles becomes the related-party table.
type DOCXLoader struct {
	logger *slog.Logger
}

// NewDOCXLoader creates a Word loader. A nil logger uses slog.Default.
func NewDOCXLoader(logger *slog.Logger) *DOCXLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &DOCXLoader{logger: logger}
}

// Load reads the .docx at path
func (l *DOCXLoader) Load(ctx context.Context, path string) (audit.Extraction, error) {
	x := audit.Extraction{Source: filepath.Base(path), Pages: audit.PageText{}}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return x, fmt.Errorf("failed to open DOCX archive: %w", err)
	}
	defer zr.Close()

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBody {
			body = f
			break
		}
	}
	if body == nil {
		return x, fmt.Errorf("DOCX archive has no %s part", docxBody)
	}

	rc, err := body.Open()
	if err != nil {
		return x, fmt.Errorf("failed to open %s: %w", docxBody, err)
	}
	defer rc.Close()

	doc, err := parseDocumentXML(ctx, io.LimitReader(rc, maxDocumentXML))
	if err != nil {
		return x, err
	}

	x.Pages["1"] = strings.Join(doc.lines, "\n")
	for _, t := range doc.tables {
		if table := tableAfterHeader(t); len(table) > 0 {
			x.Table = table
			break
		}
	}

	l.logger.Debug("ingest.docx.ok",
		"source", x.Source,
		"lines", len(doc.lines),
		"tables", len(doc.tables),
		"table_rows", len(x.Table),
	)
	return x, nil
}

type docxContent struct {
	lines  []string
	tables [][][]string
}

// parseDocumentXML walks WordprocessingML tokens. Only top-level tables are
// kept as tables; nested tables flatten into their enclosing cell.
func parseDocumentXML(ctx context.Context, r io.Reader) (docxContent, error) {
	var (
		out       docxContent
		para      strings.Builder
		cell      strings.Builder
		row       []string
		table     [][]string
		tblDepth  int
		inText    bool
		tokenSeen int
	)

	write := func(s string) {
		if tblDepth > 0 {
			cell.WriteString(s)
		} else {
			para.WriteString(s)
		}
	}

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, fmt.Errorf("failed to parse %s: %w", docxBody, err)
		}
		if tokenSeen++; tokenSeen%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return out, err
			}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
				if tblDepth == 1 {
					table = nil
				}
			case "tr":
				if tblDepth == 1 {
					row = nil
				}
			case "tc":
				if tblDepth == 1 {
					cell.Reset()
				}
			case "t":
				inText = true
			case "tab", "br", "cr":
				write(" ")
			}
		case xml.CharData:
			if inText {
				write(string(t))
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if tblDepth > 0 {
					cell.WriteByte(' ')
					continue
				}
				if s := audit.Clean(para.String()); s != "" {
					out.lines = append(out.lines, s)
				}
				para.Reset()
			case "tc":
				if tblDepth == 1 {
					row = append(row, audit.Clean(cell.String()))
				}
			case "tr":
				if tblDepth == 1 {
					table = append(table, row)
					if s := joinRows([][]string{row}); s != "" {
						out.lines = append(out.lines, s)
					}
				}
			case "tbl":
				if tblDepth == 1 && len(table) > 0 {
					out.tables = append(out.tables, table)
				}
				if tblDepth > 0 {
					tblDepth--
				}
			}
		}
	}
	return out, nil
}
