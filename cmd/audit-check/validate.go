package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
	"github.com/a3tai/mcp-audit-validator/internal/config"
	"github.com/a3tai/mcp-audit-validator/internal/service"
)

// errNotPassed is returned when --strict-exit is set and a document did not pass
var errNotPassed = errors.New("one or more documents did not pass validation")

const defaultConcurrency = 4

type validateOptions struct {
	output      string
	concurrency int
	minRows     int
	yearPolicy  string
	maxFileSize int64
	strictExit  bool
	content     bool
	verbose     bool
}

// fileResult is the outcome for one input path. Exactly one of Report and
// Error is set.
type fileResult struct {
	Path   string        `json:"path" yaml:"path"`
	Report *audit.Report `json:"report,omitempty" yaml:"report,omitempty"`
	Error  string        `json:"error,omitempty" yaml:"error,omitempty"`
}

func newValidateCmd() *cobra.Command {
	opts := validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate one or more documents",
		Example: `  audit-check validate disclosure.pdf
  audit-check validate --output yaml --concurrency 8 reports/*.xlsx
  audit-check validate --content extracted.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", formatText, "Output format (text, json, yaml)")
	flags.IntVar(&opts.concurrency, "concurrency", defaultConcurrency, "Number of documents validated at once")
	flags.IntVar(&opts.minRows, "min-rows", 0, "Minimum filled related-party rows")
	flags.StringVar(&opts.yearPolicy, "year-policy", config.DefaultYearPolicy, "Year Period End policy (calendar, strict)")
	flags.Int64Var(&opts.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "Maximum document size in bytes")
	flags.BoolVar(&opts.strictExit, "strict-exit", false, "Exit 1 unless every document is PASS")
	flags.BoolVar(&opts.content, "content", false, "Treat inputs as pre-extracted JSON content")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log extraction details to stderr")

	return cmd
}

func (o validateOptions) policy() (audit.Policy, error) {
	yp, err := audit.ParseYearPolicy(o.yearPolicy)
	if err != nil {
		return audit.Policy{}, err
	}
	if o.minRows < 0 {
		return audit.Policy{}, fmt.Errorf("min-rows must be non-negative, got %d", o.minRows)
	}
	return audit.Policy{YearPolicy: yp, MinRows: o.minRows}, nil
}

func runValidate(ctx context.Context, stdout, stderr io.Writer, opts validateOptions, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	render, err := rendererFor(opts.output)
	if err != nil {
		return err
	}
	policy, err := opts.policy()
	if err != nil {
		return err
	}
	if opts.concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", opts.concurrency)
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	svc, err := service.NewService(service.Options{
		MaxFileSize: opts.maxFileSize,
		Directory:   wd,
		Policy:      policy,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create audit service: %w", err)
	}

	results := validateAll(ctx, svc, opts, paths)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := render(stdout, results); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	failed := 0
	notPassed := 0
	for _, r := range results {
		switch {
		case r.Error != "":
			failed++
		case r.Report.OverallStatus != audit.OverallPass:
			notPassed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d document(s) could not be validated", failed, len(results))
	}
	if opts.strictExit && notPassed > 0 {
		return errNotPassed
	}
	return nil
}

// validateAll runs up to opts.concurrency validations at once. Results keep
// the order of paths.
func validateAll(ctx context.Context, svc *service.Service, opts validateOptions, paths []string) []fileResult {
	results := make([]fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			report, err := validateOne(gctx, svc, opts.content, path)
			results[i] = fileResult{Path: path, Report: report}
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func validateOne(ctx context.Context, svc *service.Service, content bool, path string) (*audit.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !content {
		return svc.ValidatePath(ctx, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return svc.ValidateContent(ctx, service.ValidateContentRequest{
		Content: string(data),
		Source:  filepath.Base(path),
	})
}
