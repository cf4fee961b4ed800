/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/cfops/internal/ops"
	"github.com/fulmenhq/cfops/internal/orchestrator"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Report broken links without writing anything",
	Long: `Scan walks every selected entry, checks each entry and asset link
against the space, and reports the broken ones. Nothing is written to
the space; the findings land in the run report.

Examples:
  cfops scan                          # Scan every entry
  cfops scan --content-type blogPost  # Scan one content type
  cfops scan --content-type 'blog*'   # Glob over content type ids`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPipeline(cmd, orchestrator.ModeScan)
	},
}

func init() {
	addPipelineFlags(scanCmd)
	if err := ops.RegisterCommand("scan", ops.GroupContent, ops.CapReadOnly, scanCmd, "Report broken links without writing"); err != nil {
		panic(err)
	}
}
