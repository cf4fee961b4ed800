/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/cfops/internal/ops"
	"github.com/fulmenhq/cfops/pkg/config"
	"github.com/fulmenhq/cfops/pkg/exitcode"
	"github.com/fulmenhq/cfops/pkg/logger"
	"github.com/fulmenhq/cfops/pkg/safeio"
)

var (
	initForce  bool
	initDryRun bool
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter .cfops.yaml in the current directory",
	Long: `Init writes a commented .cfops.yaml with the default settings. The
management token is deliberately left out of the file; set it through
the CFOPS_CONTENTFUL_TOKEN or CONTENTFUL_MANAGEMENT_TOKEN environment
variable instead.

Examples:
  cfops init --space-id abc123              # Scaffold for one space
  cfops init --space-id abc123 --dry-run    # Print without writing
  cfops init --space-id abc123 --force      # Replace an existing file`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	spaceID, _ := cmd.Flags().GetString("space-id")
	envID, _ := cmd.Flags().GetString("env-id")
	if envID == "" {
		envID = "master"
	}

	data, err := config.Scaffold(spaceID, envID)
	if err != nil {
		return exitWith(exitcode.ConfigError, err)
	}

	if initDryRun {
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	}

	const path = ".cfops.yaml"
	if _, err := os.Stat(path); err == nil && !initForce {
		return exitWith(exitcode.ConfigError,
			fmt.Errorf("%s already exists; pass --force to replace it", path))
	}
	if err := safeio.WriteFileAtomic(path, data); err != nil {
		return exitWith(exitcode.ConfigError, err)
	}

	logger.Info("wrote starter config", logger.String("path", path))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Replace an existing .cfops.yaml")
	initCmd.Flags().BoolVar(&initDryRun, "dry-run", false, "Print the config without writing it")
	if err := ops.RegisterCommand("init", ops.GroupSupport, ops.CapReadOnly, initCmd, "Write a starter .cfops.yaml"); err != nil {
		panic(err)
	}
}
