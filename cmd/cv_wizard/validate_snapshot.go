package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-wizard/internal/observability"
	"github.com/jonathan/cv-wizard/internal/schemas"
)

var validateSnapshotCmd = &cobra.Command{
	Use:   "validate-snapshot <file>...",
	Short: "Validate snapshot files against the snapshot schema",
	Long:  "Checks that each saved wizard snapshot matches the snapshot JSON schema and reports every violation.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidateSnapshot,
}

func init() {
	rootCmd.AddCommand(validateSnapshotCmd)
}

func runValidateSnapshot(cmd *cobra.Command, args []string) error {
	printer := observability.NewPrinter(cmd.OutOrStdout())

	failed := 0
	for _, path := range args {
		if err := schemas.ValidateSnapshotFile(path); err != nil {
			failed++
			printer.PrintValidationErrors(path, validationProblems(err))
			continue
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d snapshots are invalid", failed, len(args))
	}
	return nil
}
