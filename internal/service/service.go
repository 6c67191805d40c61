package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
	"github.com/a3tai/mcp-audit-validator/internal/ingest"
)

// Options configures a Service
type Options struct {
	MaxFileSize int64
	Directory   string
	Policy      audit.Policy
	Logger      *slog.Logger
}

// Service validates audit-support documents by routing them to a loader,
// normalizing the extraction and applying the rule set.
type Service struct {
	maxFileSize int64
	router      *ingest.Router
	guard       *ingest.PathGuard
	validator   *audit.Validator
	logger      *slog.Logger
	newID       func() string
}

// NewService creates a service confined to opts.Directory
func NewService(opts Options) (*Service, error) {
	guard, err := ingest.NewPathGuard(opts.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path guard: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		maxFileSize: opts.MaxFileSize,
		router:      ingest.NewRouter(opts.MaxFileSize, logger),
		guard:       guard,
		validator:   audit.NewValidator(opts.Policy),
		logger:      logger,
		newID:       uuid.NewString,
	}, nil
}

// ValidateFile validates a document inside the configured directory
func (s *Service) ValidateFile(ctx context.Context, req ValidateFileRequest) (*audit.Report, error) {
	path, err := s.guard.Resolve(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.validatePath(ctx, path)
}

// ValidatePath validates a document anywhere on disk. It is meant for local
// callers such as the CLI; tool surfaces go through ValidateFile.
func (s *Service) ValidatePath(ctx context.Context, path string) (*audit.Report, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	return s.validatePath(ctx, abs)
}

func (s *Service) validatePath(ctx context.Context, path string) (*audit.Report, error) {
	start := time.Now()
	if err := s.router.Check(path); err != nil {
		return nil, err
	}
	x, err := s.extract(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.process(x, start), nil
}

// extract runs the loader for path. A document the loader cannot parse
// yields an empty extraction, which validates as INSUFFICIENT_DATA.
func (s *Service) extract(ctx context.Context, path string) (audit.Extraction, error) {
	x, err := s.router.Load(ctx, path)
	if err == nil {
		return x, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return x, err
	}
	s.logger.Warn("service.extract_failed", "path", path, "error", err)
	return audit.Extraction{Source: filepath.Base(path)}, nil
}

// ValidateUpload spools an uploaded document to a temporary file and
// validates it. name supplies the extension and the reported source.
func (s *Service) ValidateUpload(ctx context.Context, name string, r io.Reader, size int64) (*audit.Report, error) {
	if err := ingest.CheckExtension(name); err != nil {
		return nil, err
	}
	if err := ingest.CheckSize(size, s.maxFileSize); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "audit-upload-*"+ingest.Extension(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	limit := s.maxFileSize
	if limit <= 0 {
		limit = size
	}
	written, err := io.Copy(tmp, io.LimitReader(r, limit+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if err := ingest.CheckSize(written, s.maxFileSize); err != nil {
		return nil, err
	}

	start := time.Now()
	x, err := s.extract(ctx, tmp.Name())
	if err != nil {
		return nil, err
	}
	x.Source = filepath.Base(name)
	return s.process(x, start), nil
}

// ValidateContent validates pre-extracted content
func (s *Service) ValidateContent(_ context.Context, req ValidateContentRequest) (*audit.Report, error) {
	start := time.Now()
	source := req.Source
	if source == "" {
		source = "content"
	}
	x, err := ingest.DecodeContent([]byte(req.Content), source)
	if err != nil {
		return nil, err
	}
	return s.process(x, start), nil
}

func (s *Service) process(x audit.Extraction, start time.Time) *audit.Report {
	doc := audit.Normalize(x)
	verdict := s.validator.Validate(doc)

	report := audit.BuildReport(verdict)
	report.RequestID = s.newID()
	report.Source = x.Source
	report.Sources = doc.Sources

	s.logger.Info("service.validate.ok",
		"request_id", report.RequestID,
		"source", report.Source,
		"overall_status", report.OverallStatus,
		"issues", len(report.Issues),
		"rows", len(verdict.Rows),
		"duration", time.Since(start),
	)
	return &report
}

// ListDocuments walks a directory under the configured root for supported
// documents whose name contains the query.
func (s *Service) ListDocuments(req ListDocumentsRequest) (*ListDocumentsResult, error) {
	dir := req.Directory
	if dir == "" {
		dir = s.guard.Root()
	}
	dir, err := s.guard.Resolve(dir)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("directory does not exist: %s", dir)
	}

	query := strings.ToLower(strings.TrimSpace(req.Query))
	files := []DocumentInfo{}

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // keep walking past unreadable entries
		}
		if d.IsDir() {
			if _, err := s.guard.Resolve(path); err != nil {
				return filepath.SkipDir
			}
			return nil
		}
		if ingest.CheckExtension(d.Name()) != nil {
			return nil
		}
		if query != "" && !strings.Contains(strings.ToLower(d.Name()), query) {
			return nil
		}
		if _, err := s.guard.Resolve(path); err != nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished mid-walk
		}
		if ingest.CheckSize(info.Size(), s.maxFileSize) != nil {
			return nil
		}
		files = append(files, DocumentInfo{
			Path:         path,
			Name:         d.Name(),
			Format:       strings.TrimPrefix(ingest.Extension(d.Name()), "."),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	return &ListDocumentsResult{
		Files:       files,
		TotalCount:  len(files),
		Directory:   dir,
		SearchQuery: req.Query,
	}, nil
}

var ruleText = map[audit.Field]string{
	audit.FieldCompanyName:     "letters, digits, spaces and . , & -; at least one letter",
	audit.FieldCompletedBy:     "letters, spaces and dots; at least 2 characters",
	audit.FieldDate:            "MM/DD/YYYY and a real calendar date",
	audit.FieldBusinessName:    "letters, digits, spaces and . & -; at least one letter",
	audit.FieldCriteriaCode:    "1.a through 2.f, case-insensitive",
	audit.FieldTransactionType: "letters and spaces only",
}

// RulesInfo reports the active policy and the rule behind every field
func (s *Service) RulesInfo() RulesInfoResult {
	policy := s.validator.Policy()

	yearRule := "YYYY, MM/DD/YYYY, or a calendar date between 1900 and 2100"
	if policy.YearPolicy == audit.YearPolicyStrict {
		yearRule = "YYYY or MM/DD/YYYY"
	}

	var fields []FieldRule
	for _, f := range audit.HeaderFields {
		rule := ruleText[f]
		if f == audit.FieldYearPeriodEnd {
			rule = yearRule
		}
		fields = append(fields, FieldRule{Field: f, Label: f.Label(), Scope: "header", Rule: rule})
	}
	for _, f := range audit.RowFields {
		fields = append(fields, FieldRule{Field: f, Label: f.Label(), Scope: "row", Rule: ruleText[f]})
	}

	return RulesInfoResult{
		Policy:              policy,
		SupportedExtensions: ingest.SupportedExtensions(),
		MaxFileSize:         s.maxFileSize,
		Directory:           s.guard.Root(),
		Fields:              fields,
		FieldStatuses: []string{
			string(audit.StatusFoundValid),
			string(audit.StatusFoundInvalid),
			string(audit.StatusNotFound),
		},
		OverallStatuses: []string{
			string(audit.OverallPass),
			string(audit.OverallPartialPass),
			string(audit.OverallFail),
			string(audit.OverallInsufficientData),
		},
		ContentSchema: ingest.ContentSchema(),
	}
}

// MaxFileSize returns the byte limit applied to every document
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// IsClientError reports whether err was caused by the request rather than
// the server.
func IsClientError(err error) bool {
	return errors.Is(err, ingest.ErrUnsupportedFormat) ||
		errors.Is(err, ingest.ErrFileTooLarge) ||
		errors.Is(err, ingest.ErrEmptyFile) ||
		errors.Is(err, ingest.ErrOutsideDirectory)
}
