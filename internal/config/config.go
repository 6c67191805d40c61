package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-audit-validator/internal/audit"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 50 * 1024 * 1024 // 50MB
	DefaultYearPolicy  = string(audit.YearPolicyCalendar)

	// EnvPrefix is prepended to every environment variable
	EnvPrefix = "AUDIT"
)

// ErrVersionRequested is returned when --version was passed
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the audit validator server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Document configuration
	DocumentDirectory string
	MaxFileSize       int64 // Maximum document size in bytes

	// Validation policy
	YearPolicy string
	MinRows    int

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:              ModeStdio, // MCP clients launch the server over stdio
		Host:              DefaultHost,
		Port:              DefaultPort,
		DocumentDirectory: currentDir,
		MaxFileSize:       DefaultMaxFileSize,
		YearPolicy:        DefaultYearPolicy,
		Version:           "1.0.0",
		ServerName:        "mcp-audit-validator",
		LogLevel:          DefaultLogLevel,
	}
}

// LoadFromFlags reads an optional .env file, then parses os.Args
func LoadFromFlags() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()
	return Load(os.Args[1:])
}

// Load builds a configuration from args and AUDIT_* environment variables.
// Flags override the environment, which overrides the defaults.
func Load(args []string) (*Config, error) {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return nil, ErrVersionRequested
		}
	}

	cfg := DefaultConfig()
	v := newViper(cfg)
	fs := newFlagSet(cfg)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	populateConfig(cfg, v)

	if cfg.DocumentDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.DocumentDirectory); err == nil {
			cfg.DocumentDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("dir", cfg.DocumentDirectory)
	v.SetDefault("log-level", cfg.LogLevel)
	v.SetDefault("max-file-size", cfg.MaxFileSize)
	v.SetDefault("year-policy", cfg.YearPolicy)
	v.SetDefault("min-rows", cfg.MinRows)
	return v
}

func newFlagSet(cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("mcp-audit-validator", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	fs.String("host", cfg.Host, "Server host address (server mode only)")
	fs.Int("port", cfg.Port, "Server port (server mode only)")
	fs.String("dir", cfg.DocumentDirectory, "Directory containing audit documents")
	fs.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Int64("max-file-size", cfg.MaxFileSize, "Maximum document size in bytes")
	fs.String("year-policy", cfg.YearPolicy, "Year / Period End rule: 'calendar' or 'strict'")
	fs.Int("min-rows", cfg.MinRows, "Fewest related-party rows a document must carry")
	return fs
}

func populateConfig(cfg *Config, v *viper.Viper) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.DocumentDirectory = v.GetString("dir")
	cfg.LogLevel = v.GetString("log-level")
	cfg.MaxFileSize = v.GetInt64("max-file-size")
	cfg.YearPolicy = v.GetString("year-policy")
	cfg.MinRows = v.GetInt("min-rows")
}

// Usage writes the flag and environment help to w
func Usage(w io.Writer) {
	fs := newFlagSet(DefaultConfig())
	fs.SetOutput(w)

	fmt.Fprintf(w, "Usage of mcp-audit-validator:\n")
	fmt.Fprintf(w, "\nMCP Audit Validator - validates audit-support documents over MCP or HTTP\n\n")
	fmt.Fprintf(w, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  mcp-audit-validator --dir=/path/to/docs                  # stdio mode\n")
	fmt.Fprintf(w, "  mcp-audit-validator --mode=server --port=8081            # HTTP upload server\n")
	fmt.Fprintf(w, "  mcp-audit-validator --year-policy=strict --min-rows=1    # stricter validation\n")
	fmt.Fprintf(w, "\nEnvironment Variables (also read from .env):\n")
	for _, key := range []string{"MODE", "HOST", "PORT", "DIR", "LOG_LEVEL", "MAX_FILE_SIZE", "YEAR_POLICY", "MIN_ROWS"} {
		fmt.Fprintf(w, "  %s_%s\n", EnvPrefix, key)
	}
}

var validLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Port only matters when serving HTTP
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.DocumentDirectory == "" {
		return errors.New("document directory cannot be empty")
	}
	// A missing directory is allowed so that placeholder paths still start
	if info, err := os.Stat(c.DocumentDirectory); err == nil && !info.IsDir() {
		return fmt.Errorf("document directory %s is not a directory", c.DocumentDirectory)
	} else if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cannot access document directory %s: %w", c.DocumentDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if _, err := audit.ParseYearPolicy(c.YearPolicy); err != nil {
		return err
	}
	if c.MinRows < 0 {
		return errors.New("min rows cannot be negative")
	}

	if _, ok := validLogLevels[c.LogLevel]; !ok {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Policy returns the validation policy described by the configuration
func (c *Config) Policy() audit.Policy {
	yp, err := audit.ParseYearPolicy(c.YearPolicy)
	if err != nil {
		yp = audit.YearPolicyCalendar
	}
	return audit.Policy{YearPolicy: yp, MinRows: c.MinRows}
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	if level, ok := validLogLevels[c.LogLevel]; ok {
		return level
	}
	return slog.LevelInfo
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, DocumentDirectory: %s, LogLevel: %s, "+
		"MaxFileSize: %d, YearPolicy: %s, MinRows: %d}",
		c.Mode, c.Host, c.Port, c.DocumentDirectory, c.LogLevel, c.MaxFileSize, c.YearPolicy, c.MinRows)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
