/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/cfops/internal/contentful"
	"github.com/fulmenhq/cfops/internal/orchestrator"
	"github.com/fulmenhq/cfops/internal/report"
	"github.com/fulmenhq/cfops/pkg/config"
	"github.com/fulmenhq/cfops/pkg/exitcode"
	"github.com/fulmenhq/cfops/pkg/logger"
	"github.com/fulmenhq/cfops/pkg/retry"
)

// addPipelineFlags wires the flags shared by every pipeline command.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "Log intended writes without performing them")
	cmd.Flags().Int("max-entries", 0, "Stop after this many entries (0 = no cap)")
	cmd.Flags().Int("batch-size", 0, "Listing page size (overrides config)")
	cmd.Flags().String("content-type", "", "Restrict to a content type id or glob pattern")
	cmd.Flags().String("report-dir", "", "Directory for run reports (overrides config)")
}

// loadRunConfig loads the config file and applies flag overrides.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, exitWith(exitcode.ConfigError, err)
	}

	if spaceID, _ := cmd.Flags().GetString("space-id"); spaceID != "" {
		cfg.Contentful.SpaceID = spaceID
	}
	if envID, _ := cmd.Flags().GetString("env-id"); envID != "" {
		cfg.Contentful.EnvironmentID = envID
	}
	if batchSize, _ := cmd.Flags().GetInt("batch-size"); batchSize > 0 {
		cfg.Pager.PageSize = batchSize
	}
	if reportDir, _ := cmd.Flags().GetString("report-dir"); reportDir != "" {
		cfg.Report.Dir = reportDir
	}

	// A log level from the config file applies when the flag was left alone
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		initializeLoggerAt(cmd, cfg.LogLevel)
	}

	if err := cfg.Validate(); err != nil {
		return nil, exitWith(exitcode.ConfigError, err)
	}
	return cfg, nil
}

func initializeLoggerAt(cmd *cobra.Command, level string) {
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	logger.Initialize(logger.Config{
		Level:    logger.ParseLevel(level),
		UseColor: !noColor,
		JSON:     jsonLogs,
		DryRun:   dryRun,
	})
}

// runPipeline executes one orchestrator mode end to end: config, client,
// auth preflight, the run itself, and the report artifacts.
func runPipeline(cmd *cobra.Command, mode orchestrator.Mode) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	maxEntries, _ := cmd.Flags().GetInt("max-entries")
	contentType, _ := cmd.Flags().GetString("content-type")

	client := contentful.NewClient(contentful.ClientConfig{
		BaseURL:           cfg.Contentful.BaseURL,
		Token:             cfg.Contentful.Token,
		SpaceID:           cfg.Contentful.SpaceID,
		EnvironmentID:     cfg.Contentful.EnvironmentID,
		Timeout:           cfg.Contentful.Timeout(),
		RequestsPerSecond: cfg.Contentful.RequestsPerSecond,
	})

	builder := report.NewBuilder(string(mode), cfg.Contentful.SpaceID, cfg.Contentful.EnvironmentID, dryRun)
	orch := orchestrator.New(client, orchestrator.Options{
		DryRun:      dryRun,
		MaxEntries:  maxEntries,
		BatchSize:   cfg.Pager.PageSize,
		ContentType: contentType,
		PageDelay:   cfg.Pager.PageDelay(),
		Retry: retry.Config{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay(),
			MaxDelay:    cfg.Retry.MaxDelay(),
		},
	}, builder)

	ctx := cmd.Context()
	if err := orch.Preflight(ctx); err != nil {
		return exitWith(exitcode.AuthError, err)
	}

	logger.Info("starting run",
		logger.String("command", string(mode)),
		logger.String("space", cfg.Contentful.SpaceID),
		logger.String("environment", cfg.Contentful.EnvironmentID),
		logger.Bool("dryRun", dryRun),
	)

	rep, err := orch.Run(ctx, mode)
	if err != nil {
		return exitWith(classifyRunError(err), err)
	}

	path, err := report.Write(rep, cfg.Report.Dir)
	if err != nil {
		return exitWith(exitcode.ReportError, fmt.Errorf("write report: %w", err))
	}

	logger.Info("run complete",
		logger.Int("processed", rep.Summary.EntriesProcessed),
		logger.Int("linksRemoved", rep.Summary.LinksRemoved),
		logger.Int("published", rep.Summary.EntriesPublished),
		logger.Int("deleted", rep.Summary.TotalDeletedEntries),
		logger.Int("failures", rep.Summary.Failures),
		logger.String("report", path),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
	return nil
}

// classifyRunError maps run-aborting errors to exit codes.
func classifyRunError(err error) int {
	var apiErr *contentful.APIError
	switch {
	case contentful.IsRateLimited(err):
		return exitcode.RateLimitExceeded
	case contentful.IsValidation(err):
		return exitcode.ValidationError
	case errors.As(err, &apiErr):
		return exitcode.NetworkError
	default:
		return exitcode.GeneralError
	}
}
