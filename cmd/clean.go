/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/cfops/internal/ops"
	"github.com/fulmenhq/cfops/internal/orchestrator"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove broken links and update the affected entries",
	Long: `Clean removes links whose target entry or asset no longer exists and
writes the cleaned entries back. Broken links inside arrays are dropped;
broken single-reference fields are set to null. Entries are not
published.

Malformed links and links whose target could not be checked are kept.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPipeline(cmd, orchestrator.ModeClean)
	},
}

// cleanAndPublishCmd represents the clean-and-publish command
var cleanAndPublishCmd = &cobra.Command{
	Use:   "clean-and-publish",
	Short: "Clean broken links, update, and publish the entries",
	Long: `Clean-and-publish runs the full pipeline: remove broken links, write
the cleaned entries back, and publish them. An entry whose publish is
rejected for a missing required field is deleted after every entry
linking to it has been unlinked; other validation failures are recorded
and the entry is left as a draft.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPipeline(cmd, orchestrator.ModeCleanAndPublish)
	},
}

func init() {
	addPipelineFlags(cleanCmd)
	addPipelineFlags(cleanAndPublishCmd)
	if err := ops.RegisterCommand("clean", ops.GroupContent, ops.CapWrite, cleanCmd, "Remove broken links and update entries"); err != nil {
		panic(err)
	}
	if err := ops.RegisterCommand("clean-and-publish", ops.GroupContent, ops.CapWrite, cleanAndPublishCmd, "Clean broken links, then publish"); err != nil {
		panic(err)
	}
}
