/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/cfops/internal/ops"
	"github.com/fulmenhq/cfops/internal/orchestrator"
	"github.com/fulmenhq/cfops/pkg/exitcode"
)

// deleteDraftsCmd represents the delete-drafts command
var deleteDraftsCmd = &cobra.Command{
	Use:   "delete-drafts",
	Short: "Delete every entry that has never been published",
	Long: `Delete-drafts removes every selected entry that has never been
published. Published entries are untouched. Archived drafts are
unarchived first so the delete is accepted.

This command is destructive and requires --force; --dry-run previews
the deletions without it.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireForce(cmd); err != nil {
			return err
		}
		return runPipeline(cmd, orchestrator.ModeDeleteDrafts)
	},
}

// deleteAllCmd represents the delete-all-entries command
var deleteAllCmd = &cobra.Command{
	Use:   "delete-all-entries",
	Short: "Delete every selected entry, published or not",
	Long: `Delete-all-entries removes every selected entry. Published entries are
unpublished first and archived entries unarchived, then everything is
deleted.

This command is destructive and requires --force; --dry-run previews
the deletions without it.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireForce(cmd); err != nil {
			return err
		}
		return runPipeline(cmd, orchestrator.ModeDeleteAll)
	},
}

// requireForce blocks destructive commands unless --force or --dry-run was
// given. The registry classification is the source of truth.
func requireForce(cmd *cobra.Command) error {
	if !ops.GetRegistry().IsDestructive(cmd.Name()) {
		return nil
	}
	force, _ := cmd.Flags().GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if force || dryRun {
		return nil
	}
	return exitWith(exitcode.ConfigError,
		fmt.Errorf("%s deletes content permanently; pass --force to run it or --dry-run to preview", cmd.Name()))
}

func init() {
	addPipelineFlags(deleteDraftsCmd)
	addPipelineFlags(deleteAllCmd)
	deleteDraftsCmd.Flags().Bool("force", false, "Confirm the destructive operation")
	deleteAllCmd.Flags().Bool("force", false, "Confirm the destructive operation")
	if err := ops.RegisterCommand("delete-drafts", ops.GroupDestructive, ops.CapDestructive, deleteDraftsCmd, "Delete every never-published entry"); err != nil {
		panic(err)
	}
	if err := ops.RegisterCommand("delete-all-entries", ops.GroupDestructive, ops.CapDestructive, deleteAllCmd, "Delete every selected entry"); err != nil {
		panic(err)
	}
}
