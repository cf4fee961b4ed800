/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/cfops/internal/ops"
	"github.com/fulmenhq/cfops/pkg/buildinfo"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if jsonOutput {
		info := map[string]interface{}{
			"version":   buildinfo.BinaryVersion,
			"goVersion": runtime.Version(),
			"platform":  runtime.GOOS,
			"arch":      runtime.GOARCH,
		}
		if extended {
			info["module"] = buildinfo.ModuleVersion()
		}
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "cfops %s\n", buildinfo.BinaryVersion)
	if extended {
		fmt.Fprintf(out, "  module:    %s\n", buildinfo.ModuleVersion())
		fmt.Fprintf(out, "  go:        %s\n", runtime.Version())
		fmt.Fprintf(out, "  platform:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
	}
	return nil
}

func init() {
	versionCmd.Flags().Bool("extended", false, "Show build and module information")
	if err := ops.RegisterCommand("version", ops.GroupSupport, ops.CapReadOnly, versionCmd, "Show version information"); err != nil {
		panic(err)
	}
}
