package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "audit-check",
		Short: "Validate related-party audit documents",
		Long: `audit-check extracts the header block and related-party table from
audit-support documents (PDF, DOCX, XLSX, CSV) and validates every field.`,
		Version:       fmt.Sprintf("%s (%s)", version, gitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCmd(), newRulesCmd())
	return root
}
