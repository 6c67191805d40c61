package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
)

// firstTablePage is where the related-party table starts being looked for;
// page 1 carries the header block.
const firstTablePage = 2

// PDFLoader extracts page text, a positioned table and AcroForm fields
type PDFLoader struct {
	forms  *FormReader
	logger *slog.Logger
}

// NewPDFLoader creates a PDF loader. A nil logger uses slog.Default.
func NewPDFLoader(logger *slog.Logger) *PDFLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFLoader{
		forms:  NewFormReader(logger),
		logger: logger,
	}
}

// Load reads the PDF at path. Pages that fail to parse are skipped; a form
// read failure leaves the text extraction intact.
func (l *PDFLoader) Load(ctx context.Context, path string) (audit.Extraction, error) {
	x := audit.Extraction{Source: filepath.Base(path), Pages: audit.PageText{}}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return x, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return x, err
		}
		lines, text, err := l.readPage(reader, pageNum)
		if err != nil {
			l.logger.Debug("ingest.pdf.page_skipped", "source", x.Source, "page", pageNum, "error", err)
			continue
		}
		x.Pages[strconv.Itoa(pageNum)] = text
		if pageNum >= firstTablePage && len(x.Table) == 0 {
			x.Table = tableFromLines(lines)
		}
	}

	fields, err := l.forms.ReadFile(path)
	if err != nil {
		l.logger.Warn("ingest.pdf.forms_failed", "source", x.Source, "error", err)
	} else {
		x.Form = fields
	}

	l.logger.Debug("ingest.pdf.ok",
		"source", x.Source,
		"pages", len(x.Pages),
		"form_fields", len(x.Form),
		"table_rows", len(x.Table),
	)
	return x, nil
}

// readPage recovers from the panics the PDF parser raises on malformed
// content streams.
func (l *PDFLoader) readPage(reader *pdf.Reader, pageNum int) (lines []layoutLine, text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during page content extraction on page %d: %v", pageNum, r)
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return nil, "", fmt.Errorf("invalid page %d", pageNum)
	}

	lines = groupLines(glyphsFromContent(page.Content()))
	text = linesText(lines)
	if strings.TrimSpace(text) != "" {
		return lines, text, nil
	}

	plain, err := page.GetPlainText(nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to extract text from page %d: %w", pageNum, err)
	}
	return nil, plain, nil
}
