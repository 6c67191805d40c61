package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/mcp-audit-validator/internal/config"
	"github.com/a3tai/mcp-audit-validator/internal/mcp"
	"github.com/a3tai/mcp-audit-validator/internal/service"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// newLogger builds the process logger. In stdio mode stdout carries the MCP
// protocol, so logs go to stderr and stay quiet unless debug is on.
func newLogger(cfg *config.Config, stdout, stderr io.Writer) *slog.Logger {
	if cfg.IsStdioMode() {
		level := slog.LevelWarn
		if cfg.IsDebug() {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	svc, err := service.NewService(service.Options{
		MaxFileSize: cfg.MaxFileSize,
		Directory:   cfg.DocumentDirectory,
		Policy:      cfg.Policy(),
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create audit service: %w", err)
	}

	server, err := mcp.NewServer(cfg, svc, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	logger.Info("server.start",
		"mode", cfg.Mode,
		"dir", cfg.DocumentDirectory,
		"year_policy", cfg.YearPolicy,
		"min_rows", cfg.MinRows,
	)
	return server.Run(ctx)
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n\n", err)
		config.Usage(os.Stderr)
		os.Exit(2)
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger := newLogger(cfg, os.Stdout, os.Stderr)
	slog.SetDefault(logger)
	logger.Debug("config.loaded", "config", cfg.String())

	// In stdio mode the parent process controls our lifecycle through stdin
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server.failed", "error", err)
		stop()
		os.Exit(1)
	}
	logger.Info("server.stopped")
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP Audit Validator\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
