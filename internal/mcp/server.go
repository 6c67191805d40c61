package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-audit-validator/internal/api"
	"github.com/a3tai/mcp-audit-validator/internal/audit"
	"github.com/a3tai/mcp-audit-validator/internal/config"
	"github.com/a3tai/mcp-audit-validator/internal/descriptions"
	"github.com/a3tai/mcp-audit-validator/internal/service"
)

// shutdownTimeout bounds how long in-flight HTTP requests may finish
const shutdownTimeout = 10 * time.Second

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *service.Service
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, svc *service.Service, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if svc == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // tool list is fixed at startup
	)

	s := &Server{
		config:    cfg,
		service:   svc,
		mcpServer: mcpServer,
		logger:    logger,
	}
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	validateFileTool := mcp.NewTool(
		"audit_validate_file",
		mcp.WithDescription(descriptions.AuditValidateFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the document, absolute or relative to the configured directory"),
		),
	)
	s.mcpServer.AddTool(validateFileTool, s.handleValidateFile)

	validateContentTool := mcp.NewTool(
		"audit_validate_content",
		mcp.WithDescription(descriptions.AuditValidateContentDescription),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("JSON payload with optional pages, form_fields and table"),
		),
		mcp.WithString("source",
			mcp.Description("Name to report the content under"),
		),
	)
	s.mcpServer.AddTool(validateContentTool, s.handleValidateContent)

	listDocumentsTool := mcp.NewTool(
		"audit_list_documents",
		mcp.WithDescription(descriptions.AuditListDocumentsDescription),
		mcp.WithString("directory",
			mcp.Description("Directory to search (uses the configured directory if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional case-insensitive file name filter"),
		),
	)
	s.mcpServer.AddTool(listDocumentsTool, s.handleListDocuments)

	rulesInfoTool := mcp.NewTool(
		"audit_rules_info",
		mcp.WithDescription(descriptions.AuditRulesInfoDescription),
	)
	s.mcpServer.AddTool(rulesInfoTool, s.handleRulesInfo)
}

// Handler functions
func (s *Server) handleValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report, err := s.service.ValidateFile(ctx, service.ValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatReport(report)), nil
}

func (s *Server) handleValidateContent(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	source := ""
	if src, ok := request.GetArguments()["source"].(string); ok {
		source = src
	}

	report, err := s.service.ValidateContent(ctx, service.ValidateContentRequest{Content: content, Source: source})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatReport(report)), nil
}

func (s *Server) handleListDocuments(_ context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	req := service.ListDocumentsRequest{}
	if dir, ok := args["directory"].(string); ok {
		req.Directory = dir
	}
	if q, ok := args["query"].(string); ok {
		req.Query = q
	}

	result, err := s.service.ListDocuments(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if result.TotalCount == 0 {
		text := fmt.Sprintf("No audit documents found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			text += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
		return mcp.NewToolResultText(text), nil
	}
	return mcp.NewToolResultText(s.formatDocumentList(result)), nil
}

func (s *Server) handleRulesInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info := s.service.RulesInfo()

	payload, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var text strings.Builder
	fmt.Fprintf(&text, "%s v%s - Validation Rules\n", s.config.ServerName, s.config.Version)
	fmt.Fprintf(&text, "Year policy: %s\n", info.Policy.YearPolicy)
	fmt.Fprintf(&text, "Minimum related-party rows: %d\n", info.Policy.MinRows)
	fmt.Fprintf(&text, "Supported types: %s\n", strings.Join(info.SupportedExtensions, ", "))
	fmt.Fprintf(&text, "Max file size: %d bytes\n\n", info.MaxFileSize)
	text.WriteString("Fields:\n")
	for _, f := range info.Fields {
		fmt.Fprintf(&text, "  • %s (%s): %s\n", f.Label, f.Scope, f.Rule)
	}
	text.WriteString("\nDetails (JSON):\n")
	text.Write(payload)

	return mcp.NewToolResultText(text.String()), nil
}

// Formatting methods
func (s *Server) formatReport(report *audit.Report) string {
	var text strings.Builder
	fmt.Fprintf(&text, "Audit validation for: %s\n", report.Source)
	fmt.Fprintf(&text, "Request ID: %s\n", report.RequestID)
	fmt.Fprintf(&text, "Overall status: %s\n", report.OverallStatus)
	fmt.Fprintf(&text, "Can proceed: %t\n", report.CanProceed)

	if len(report.Issues) == 0 {
		text.WriteString("\nNo issues found.\n")
	} else {
		fmt.Fprintf(&text, "\nIssues (%d):\n", len(report.Issues))
		for i, issue := range report.Issues {
			fmt.Fprintf(&text, "%d. %s: %s\n", i+1, issue.Field, issue.Message)
		}
	}
	for _, note := range report.Notes {
		fmt.Fprintf(&text, "Note: %s\n", note)
	}

	if payload, err := json.MarshalIndent(report, "", "  "); err == nil {
		text.WriteString("\nDetails (JSON):\n")
		text.Write(payload)
	}
	return text.String()
}

func (s *Server) formatDocumentList(result *service.ListDocumentsResult) string {
	var text strings.Builder
	fmt.Fprintf(&text, "Found %d audit document(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		fmt.Fprintf(&text, "Search query: %s\n", result.SearchQuery)
	}
	text.WriteString("\nFiles:\n")

	for i, file := range result.Files {
		fmt.Fprintf(&text, "%d. %s (%s)\n", i+1, file.Name, file.Format)
		fmt.Fprintf(&text, "   Path: %s\n", file.Path)
		fmt.Fprintf(&text, "   Size: %d bytes\n", file.Size)
		fmt.Fprintf(&text, "   Modified: %s\n", file.ModifiedTime)
	}
	return text.String()
}

// Run starts the server in the configured mode and blocks until ctx is
// cancelled or the transport fails.
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over standard input and output
func (s *Server) runStdioMode(_ context.Context) error {
	s.logger.Debug("mcp.stdio.start", "dir", s.config.DocumentDirectory)

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the HTTP upload API until ctx is cancelled, then
// drains in-flight requests.
func (s *Server) runServerMode(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Address(),
		Handler:           api.NewRouter(s.service, s.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api.listen", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("api.shutdown", "addr", httpServer.Addr)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
