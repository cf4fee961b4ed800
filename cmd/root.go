/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/cfops/internal/ops"
	"github.com/fulmenhq/cfops/pkg/buildinfo"
	"github.com/fulmenhq/cfops/pkg/exitcode"
	"github.com/fulmenhq/cfops/pkg/logger"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cfops",
		Short: "Bulk content operations for Contentful spaces",
		Long: `Cfops runs bulk operations against a Contentful space: scanning for
broken references, cleaning them, publishing entries and assets, and
deleting entries in bulk. Every run writes a JSON audit report.

Examples:
   cfops scan                    # Report broken links without writing
   cfops clean --dry-run         # Preview link cleaning
   cfops clean-and-publish       # Clean, update, and publish
   cfops delete-drafts --force   # Delete every draft entry`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	// Add global flags
	cmd.PersistentFlags().String("space-id", "", "Contentful space id (overrides config)")
	cmd.PersistentFlags().String("env-id", "", "Contentful environment id (overrides config)")
	cmd.PersistentFlags().String("log-level", "", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("cfops {{.Version}}\n")

	// Grouped help by command group (Content → Destructive → Support)
	cmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		reg := ops.GetRegistry()
		cmd.Println(cmd.Long)
		cmd.Println()
		cmd.Println("Content Commands:")
		for _, c := range reg.GetCommandsByGroup(ops.GroupContent) {
			cmd.Printf("  %-22s %s\n", c.Name, c.Description)
		}
		cmd.Println()
		cmd.Println("Destructive Commands (require --force):")
		for _, c := range reg.GetCommandsByGroup(ops.GroupDestructive) {
			cmd.Printf("  %-22s %s\n", c.Name, c.Description)
		}
		cmd.Println()
		cmd.Println("Support Commands:")
		for _, c := range reg.GetCommandsByGroup(ops.GroupSupport) {
			cmd.Printf("  %-22s %s\n", c.Name, c.Description)
		}
		cmd.Println()
		cmd.Println("Flags:")
		cmd.Print(cmd.UsageString())
	})

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
// This is called from init() for production and can be called explicitly in tests.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(scanCmd)
	cmd.AddCommand(cleanCmd)
	cmd.AddCommand(cleanAndPublishCmd)
	cmd.AddCommand(publishCmd)
	cmd.AddCommand(publishEntriesCmd)
	cmd.AddCommand(publishAssetsCmd)
	cmd.AddCommand(deleteDraftsCmd)
	cmd.AddCommand(deleteAllCmd)
	cmd.AddCommand(initCmd)
	cmd.AddCommand(versionCmd)
	cmd.AddCommand(envinfoCmd)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// exitError carries a process exit code alongside the error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, err error) error {
	return &exitError{code: code, err: err}
}

// Execute runs the root command and maps failures to process exit codes.
// This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	logger.Error("Command execution failed", logger.Err(err))
	var exit *exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	os.Exit(exitcode.GeneralError)
}

func init() {
	// Register all subcommands with the production rootCmd
	registerSubcommands(rootCmd)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if logLevelStr == "" {
		logLevelStr = "info"
	}

	logger.Initialize(logger.Config{
		Level:    logger.ParseLevel(logLevelStr),
		UseColor: !noColor,
		JSON:     jsonLogs,
		DryRun:   dryRun,
	})
}
