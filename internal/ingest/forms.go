package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
)

// maxFieldDepth bounds the Kids recursion on malformed field trees
const maxFieldDepth = 32

// FormReader reads AcroForm fields with pdfcpu
type FormReader struct {
	logger *slog.Logger
}

// NewFormReader creates a form reader. A nil logger uses slog.Default.
func NewFormReader(logger *slog.Logger) *FormReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &FormReader{logger: logger}
}

// ReadFile returns the filled-in form fields of the PDF at path
func (fr *FormReader) ReadFile(path string) ([]audit.FormField, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	return fr.Read(file)
}

// Read returns the filled-in form fields of a PDF stream, in document order
func (fr *FormReader) Read(rs io.ReadSeeker) ([]audit.FormField, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return fr.fieldsFromContext(ctx)
}

func (fr *FormReader) fieldsFromContext(ctx *model.Context) ([]audit.FormField, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return nil, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return nil, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	var out []audit.FormField
	for i, ref := range fieldsArray {
		if err := fr.walkField(ctx, ref, "", 0, &out); err != nil {
			fr.logger.Debug("ingest.form.field_skipped", "index", i, "error", err)
		}
	}
	return out, nil
}

// walkField descends through non-terminal fields, building the fully
// qualified name, and appends every terminal field carrying a value.
func (fr *FormReader) walkField(ctx *model.Context, obj types.Object, parentName string, depth int, out *[]audit.FormField) error {
	if depth > maxFieldDepth {
		return fmt.Errorf("field tree deeper than %d levels", maxFieldDepth)
	}
	dict, err := ctx.DereferenceDict(obj)
	if err != nil {
		return fmt.Errorf("failed to dereference field: %w", err)
	}
	if dict == nil {
		return nil
	}

	name := fr.stringEntry(ctx, dict, "T")
	qualified := name
	if parentName != "" && name != "" {
		qualified = parentName + "." + name
	} else if name == "" {
		qualified = parentName
	}

	if kids := fr.fieldKids(ctx, dict); len(kids) > 0 {
		for _, kid := range kids {
			if err := fr.walkField(ctx, kid, qualified, depth+1, out); err != nil {
				fr.logger.Debug("ingest.form.kid_skipped", "parent", qualified, "error", err)
			}
		}
		return nil
	}

	value := fr.fieldValue(ctx, dict)
	if value == "" {
		return nil
	}
	label := fr.stringEntry(ctx, dict, "TU")
	if label == "" {
		label = qualified
	}
	*out = append(*out, audit.FormField{Label: label, Value: value})
	return nil
}

// fieldKids returns the Kids that are themselves fields. Kids that are only
// widget annotations (no T entry) belong to a terminal field.
func (fr *FormReader) fieldKids(ctx *model.Context, dict types.Dict) []types.Object {
	kidsObj, found := dict.Find("Kids")
	if !found {
		return nil
	}
	kids, err := ctx.DereferenceArray(kidsObj)
	if err != nil {
		return nil
	}
	var fields []types.Object
	for _, kid := range kids {
		kidDict, err := ctx.DereferenceDict(kid)
		if err != nil || kidDict == nil {
			continue
		}
		if _, ok := kidDict.Find("T"); ok {
			fields = append(fields, kid)
		}
	}
	return fields
}

func (fr *FormReader) stringEntry(ctx *model.Context, dict types.Dict, key string) string {
	obj, found := dict.Find(key)
	if !found {
		return ""
	}
	s, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// fieldValue reads V as text. Choice arrays yield their first entry and
// unchecked buttons yield nothing.
func (fr *FormReader) fieldValue(ctx *model.Context, dict types.Dict) string {
	obj, found := dict.Find("V")
	if !found {
		return ""
	}
	if s, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
		return s
	}
	if name, err := ctx.DereferenceName(obj, model.V10, nil); err == nil {
		if name == "Off" {
			return ""
		}
		return string(name)
	}
	if arr, err := ctx.DereferenceArray(obj); err == nil {
		for _, item := range arr {
			if s, err := ctx.DereferenceStringOrHexLiteral(item, model.V10, nil); err == nil && s != "" {
				return s
			}
		}
	}
	return ""
}
