package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-audit-validator/internal/config"
	"github.com/a3tai/mcp-audit-validator/internal/service"
)

func newRulesCmd() *cobra.Command {
	var (
		output     string
		yearPolicy string
		minRows    int
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the validation rules in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			policy, err := validateOptions{yearPolicy: yearPolicy, minRows: minRows}.policy()
			if err != nil {
				return err
			}
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			svc, err := service.NewService(service.Options{
				MaxFileSize: config.DefaultMaxFileSize,
				Directory:   wd,
				Policy:      policy,
				Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
			})
			if err != nil {
				return fmt.Errorf("failed to create audit service: %w", err)
			}
			return writeRules(cmd.OutOrStdout(), output, svc.RulesInfo())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatText, "Output format (text, json, yaml)")
	cmd.Flags().StringVar(&yearPolicy, "year-policy", config.DefaultYearPolicy, "Year Period End policy (calendar, strict)")
	cmd.Flags().IntVar(&minRows, "min-rows", 0, "Minimum filled related-party rows")
	return cmd
}

func writeRules(w io.Writer, format string, info service.RulesInfoResult) error {
	switch strings.ToLower(format) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case formatYAML:
		data, err := yaml.Marshal(info)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case formatText:
		var b strings.Builder
		fmt.Fprintf(&b, "Year policy: %s\n", info.Policy.YearPolicy)
		fmt.Fprintf(&b, "Minimum related-party rows: %d\n", info.Policy.MinRows)
		fmt.Fprintf(&b, "Supported types: %s\n", strings.Join(info.SupportedExtensions, ", "))
		for _, f := range info.Fields {
			fmt.Fprintf(&b, "  %s (%s): %s\n", f.Label, f.Scope, f.Rule)
		}
		_, err := io.WriteString(w, b.String())
		return err
	default:
		return fmt.Errorf("invalid output format %q (must be %s, %s or %s)", format, formatText, formatJSON, formatYAML)
	}
}
