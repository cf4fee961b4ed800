/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/cfops/internal/ops"
	"github.com/fulmenhq/cfops/internal/orchestrator"
)

// publishCmd represents the publish command
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish all draft and changed entries and assets",
	Long: `Publish walks every selected entry and every asset and publishes the
ones that are drafts or carry unpublished changes. Records that are
already current or archived are skipped. Validation rejections are
recorded in the run report; they do not stop the run.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPipeline(cmd, orchestrator.ModePublish)
	},
}

// publishEntriesCmd represents the publish-entries-only command
var publishEntriesCmd = &cobra.Command{
	Use:   "publish-entries-only",
	Short: "Publish draft and changed entries, leaving assets alone",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPipeline(cmd, orchestrator.ModePublishEntries)
	},
}

// publishAssetsCmd represents the publish-assets-only command
var publishAssetsCmd = &cobra.Command{
	Use:   "publish-assets-only",
	Short: "Publish draft and changed assets, leaving entries alone",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPipeline(cmd, orchestrator.ModePublishAssets)
	},
}

func init() {
	addPipelineFlags(publishCmd)
	addPipelineFlags(publishEntriesCmd)
	addPipelineFlags(publishAssetsCmd)
	if err := ops.RegisterCommand("publish", ops.GroupContent, ops.CapWrite, publishCmd, "Publish draft and changed entries and assets"); err != nil {
		panic(err)
	}
	if err := ops.RegisterCommand("publish-entries-only", ops.GroupContent, ops.CapWrite, publishEntriesCmd, "Publish entries only"); err != nil {
		panic(err)
	}
	if err := ops.RegisterCommand("publish-assets-only", ops.GroupContent, ops.CapWrite, publishAssetsCmd, "Publish assets only"); err != nil {
		panic(err)
	}
}
