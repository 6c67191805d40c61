package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
)

// Loader turns one file on disk into an Extraction
type Loader interface {
	Load(ctx context.Context, path string) (audit.Extraction, error)
}

// Router picks a loader by file extension after the file passes the
// existence, type and size checks.
type Router struct {
	loaders     map[string]Loader
	maxFileSize int64
}

// NewRouter creates a router with the PDF, DOCX, XLSX and CSV loaders
// registered.
func NewRouter(maxFileSize int64, logger *slog.Logger) *Router {
	r := &Router{
		loaders:     make(map[string]Loader, len(supportedExtensions)),
		maxFileSize: maxFileSize,
	}
	r.Register(ExtPDF, NewPDFLoader(logger))
	r.Register(ExtDOCX, NewDOCXLoader(logger))
	r.Register(ExtXLSX, NewXLSXLoader(logger))
	r.Register(ExtCSV, NewCSVLoader(logger))
	return r
}

// Register sets the loader for ext, replacing any existing one
func (r *Router) Register(ext string, loader Loader) {
	r.loaders[strings.ToLower(ext)] = loader
}

// MaxFileSize returns the byte limit applied before loading
func (r *Router) MaxFileSize() int64 {
	return r.maxFileSize
}

// Check runs the existence, type and size checks without loading
func (r *Router) Check(path string) error {
	if err := CheckFile(path, r.maxFileSize); err != nil {
		return err
	}
	if _, ok := r.loaders[Extension(path)]; !ok {
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, Extension(path))
	}
	return nil
}

// Load checks path and hands it to the loader for its extension
func (r *Router) Load(ctx context.Context, path string) (audit.Extraction, error) {
	if err := r.Check(path); err != nil {
		return audit.Extraction{}, err
	}
	return r.loaders[Extension(path)].Load(ctx, path)
}
