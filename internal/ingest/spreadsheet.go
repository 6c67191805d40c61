package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
)

// XLSXLoader reads workbooks with excelize. The first sheet carries the
// header block; a second sheet, when present, carries the related-party
// table.
type XLSXLoader struct {
	logger *slog.Logger
}

// NewXLSXLoader creates a workbook loader. A nil logger uses slog.Default.
func NewXLSXLoader(logger *slog.Logger) *XLSXLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXLoader{logger: logger}
}

// Load reads the workbook at path
func (l *XLSXLoader) Load(ctx context.Context, path string) (audit.Extraction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return audit.Extraction{Source: filepath.Base(path)}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return l.extract(ctx, f, filepath.Base(path))
}

// Read loads a workbook from a stream
func (l *XLSXLoader) Read(ctx context.Context, r io.Reader, source string) (audit.Extraction, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return audit.Extraction{Source: source}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return l.extract(ctx, f, source)
}

func (l *XLSXLoader) extract(ctx context.Context, f *excelize.File, source string) (audit.Extraction, error) {
	x := audit.Extraction{Source: source, Pages: audit.PageText{}}

	sheets := f.GetSheetList()
	for i, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return x, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			l.logger.Debug("ingest.xlsx.sheet_skipped", "source", source, "sheet", sheet, "error", err)
			continue
		}
		x.Pages[strconv.Itoa(i+1)] = joinRows(rows)

		switch {
		case i == 1:
			// a dedicated table sheet wins over a table found on sheet 1
			if t := tableAfterHeader(rows); len(t) > 0 {
				x.Table = t
			} else {
				x.Table = nonEmptyRows(rows)
			}
		case i == 0 && len(sheets) == 1:
			x.Table = tableAfterHeader(rows)
		}
	}

	l.logger.Debug("ingest.xlsx.ok", "source", source, "sheets", len(sheets), "table_rows", len(x.Table))
	return x, nil
}

// CSVLoader reads comma separated exports. Every record is page text; the
// table starts at the column-title record.
type CSVLoader struct {
	logger *slog.Logger
}

// NewCSVLoader creates a CSV loader. A nil logger uses slog.Default.
func NewCSVLoader(logger *slog.Logger) *CSVLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVLoader{logger: logger}
}

// Load reads the CSV file at path
func (l *CSVLoader) Load(ctx context.Context, path string) (audit.Extraction, error) {
	file, err := os.Open(path)
	if err != nil {
		return audit.Extraction{Source: filepath.Base(path)}, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return l.Read(ctx, file, filepath.Base(path))
}

// Read loads CSV records from a stream
func (l *CSVLoader) Read(ctx context.Context, r io.Reader, source string) (audit.Extraction, error) {
	x := audit.Extraction{Source: source, Pages: audit.PageText{}}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return x, err
		}
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return x, fmt.Errorf("failed to parse CSV: %w", err)
		}
		rows = append(rows, record)
	}

	x.Pages["1"] = joinRows(rows)
	x.Table = tableAfterHeader(rows)

	l.logger.Debug("ingest.csv.ok", "source", source, "records", len(rows), "table_rows", len(x.Table))
	return x, nil
}

func nonEmptyRows(rows [][]string) audit.RawTable {
	var out audit.RawTable
	for _, row := range rows {
		if joinRows([][]string{row}) != "" {
			out = append(out, append([]string(nil), row...))
		}
	}
	return out
}
