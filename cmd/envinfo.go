/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/cfops/internal/ops"
	"github.com/fulmenhq/cfops/pkg/buildinfo"
	"github.com/fulmenhq/cfops/pkg/config"
	"github.com/fulmenhq/cfops/pkg/exitcode"
)

// EnvData represents the structured data for environment information.
type EnvData struct {
	System SystemInfo     `json:"system"`
	Config ResolvedConfig `json:"config"`
}

// SystemInfo holds system-related information.
type SystemInfo struct {
	OS           string    `json:"os"`
	Architecture string    `json:"architecture"`
	GoVersion    string    `json:"goVersion"`
	Hostname     string    `json:"hostname"`
	WorkingDir   string    `json:"workingDir"`
	Timestamp    time.Time `json:"timestamp"`
	Version      string    `json:"version"`
}

// ResolvedConfig mirrors the effective configuration. The token never
// appears here, only whether one is set.
type ResolvedConfig struct {
	SpaceID           string  `json:"spaceId"`
	EnvironmentID     string  `json:"environmentId"`
	BaseURL           string  `json:"baseUrl"`
	TokenSet          bool    `json:"tokenSet"`
	TimeoutSeconds    int     `json:"timeoutSeconds"`
	RequestsPerSecond float64 `json:"requestsPerSecond"`
	PageSize          int     `json:"pageSize"`
	PageDelayMS       int     `json:"pageDelayMs"`
	RetryMaxAttempts  int     `json:"retryMaxAttempts"`
	ReportDir         string  `json:"reportDir"`
	LogLevel          string  `json:"logLevel"`
}

// envinfoCmd represents the envinfo command
var envinfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display the resolved configuration and system information",
	Long: `Envinfo shows the configuration cfops would run with after merging the
config file, environment variables, and flags, plus basic system
information. The management token is redacted.`,
	RunE: runEnvinfo,
}

func runEnvinfo(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return exitWith(exitcode.ConfigError, err)
	}
	if spaceID, _ := cmd.Flags().GetString("space-id"); spaceID != "" {
		cfg.Contentful.SpaceID = spaceID
	}
	if envID, _ := cmd.Flags().GetString("env-id"); envID != "" {
		cfg.Contentful.EnvironmentID = envID
	}

	hostname, _ := os.Hostname()
	workingDir, _ := os.Getwd()

	data := EnvData{
		System: SystemInfo{
			OS:           runtime.GOOS,
			Architecture: runtime.GOARCH,
			GoVersion:    runtime.Version(),
			Hostname:     hostname,
			WorkingDir:   workingDir,
			Timestamp:    time.Now().UTC(),
			Version:      buildinfo.BinaryVersion,
		},
		Config: ResolvedConfig{
			SpaceID:           cfg.Contentful.SpaceID,
			EnvironmentID:     cfg.Contentful.EnvironmentID,
			BaseURL:           cfg.Contentful.BaseURL,
			TokenSet:          cfg.Contentful.Token != "",
			TimeoutSeconds:    cfg.Contentful.TimeoutSeconds,
			RequestsPerSecond: cfg.Contentful.RequestsPerSecond,
			PageSize:          cfg.Pager.PageSize,
			PageDelayMS:       cfg.Pager.PageDelayMS,
			RetryMaxAttempts:  cfg.Retry.MaxAttempts,
			ReportDir:         cfg.Report.Dir,
			LogLevel:          cfg.LogLevel,
		},
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		encoded, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(encoded))
		return nil
	}

	fmt.Fprintf(out, "cfops %s (%s %s/%s)\n", data.System.Version, data.System.GoVersion, data.System.OS, data.System.Architecture)
	fmt.Fprintf(out, "  space:        %s\n", orUnset(data.Config.SpaceID))
	fmt.Fprintf(out, "  environment:  %s\n", orUnset(data.Config.EnvironmentID))
	fmt.Fprintf(out, "  base URL:     %s\n", data.Config.BaseURL)
	fmt.Fprintf(out, "  token:        %s\n", tokenStatus(data.Config.TokenSet))
	fmt.Fprintf(out, "  page size:    %d (delay %dms)\n", data.Config.PageSize, data.Config.PageDelayMS)
	fmt.Fprintf(out, "  retries:      %d attempts\n", data.Config.RetryMaxAttempts)
	fmt.Fprintf(out, "  report dir:   %s\n", data.Config.ReportDir)
	fmt.Fprintf(out, "  log level:    %s\n", data.Config.LogLevel)
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func tokenStatus(set bool) string {
	if set {
		return "set (redacted)"
	}
	return "not set"
}

func init() {
	if err := ops.RegisterCommand("envinfo", ops.GroupSupport, ops.CapReadOnly, envinfoCmd, "Show resolved configuration and system info"); err != nil {
		panic(err)
	}
}
