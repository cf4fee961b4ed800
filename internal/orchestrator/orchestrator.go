// Package orchestrator sequences the per-command pipeline: scan entries,
// clean broken links, write updates, publish, and delete unpublishable
// entries after unlinking their referrers. Failures are isolated per entry;
// only the auth preflight is fatal for a run.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/fulmenhq/cfops/internal/cleaner"
	"github.com/fulmenhq/cfops/internal/contentful"
	"github.com/fulmenhq/cfops/internal/pager"
	"github.com/fulmenhq/cfops/internal/report"
	"github.com/fulmenhq/cfops/pkg/logger"
	"github.com/fulmenhq/cfops/pkg/retry"
)

// Mode selects which pipeline a run executes.
type Mode string

const (
	ModeScan            Mode = "scan"
	ModeClean           Mode = "clean"
	ModeCleanAndPublish Mode = "clean-and-publish"
	ModePublish         Mode = "publish"
	ModePublishEntries  Mode = "publish-entries-only"
	ModePublishAssets   Mode = "publish-assets-only"
	ModeDeleteDrafts    Mode = "delete-drafts"
	ModeDeleteAll       Mode = "delete-all-entries"
)

// State names the pipeline phases, in order.
type State string

const (
	StateIdle           State = "idle"
	StateScanning       State = "scanning"
	StateCleaning       State = "cleaning"
	StateUpdating       State = "updating"
	StatePublishing     State = "publishing"
	StateDeletingUnsafe State = "deleting-unsafe"
	StateReporting      State = "reporting"
	StateDone           State = "done"
)

// Options carries the per-run flags.
type Options struct {
	DryRun      bool
	MaxEntries  int
	BatchSize   int
	ContentType string // exact id or doublestar glob
	PageDelay   time.Duration
	Retry       retry.Config
}

// Orchestrator drives one run against the management API.
type Orchestrator struct {
	api     contentful.API
	opts    Options
	builder *report.Builder
	cleaner *cleaner.Cleaner
	state   State
}

// New builds an orchestrator. The cleaner's existence checks go through the
// same retry wrapper as every other call.
func New(api contentful.API, opts Options, builder *report.Builder) *Orchestrator {
	o := &Orchestrator{
		api:     api,
		opts:    opts,
		builder: builder,
		state:   StateIdle,
	}
	o.cleaner = cleaner.New(&retryingChecker{o: o})
	return o
}

// State returns the current pipeline phase.
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.state = s
	logger.Debug("pipeline state", logger.String("state", string(s)))
}

// Preflight verifies authentication and connectivity. Callers must treat a
// failure here as fatal for the whole run.
func (o *Orchestrator) Preflight(ctx context.Context) error {
	if err := o.api.CheckAuth(ctx); err != nil {
		return fmt.Errorf("preflight: %w", err)
	}
	return nil
}

// Run executes the pipeline for mode and returns the finalized report.
func (o *Orchestrator) Run(ctx context.Context, mode Mode) (*report.Report, error) {
	var err error
	switch mode {
	case ModeScan:
		err = o.runCleanPipeline(ctx, false, false)
	case ModeClean:
		err = o.runCleanPipeline(ctx, true, false)
	case ModeCleanAndPublish:
		err = o.runCleanPipeline(ctx, true, true)
	case ModePublish:
		err = o.runPublish(ctx, true, true)
	case ModePublishEntries:
		err = o.runPublish(ctx, true, false)
	case ModePublishAssets:
		err = o.runPublish(ctx, false, true)
	case ModeDeleteDrafts:
		err = o.runDelete(ctx, true)
	case ModeDeleteAll:
		err = o.runDelete(ctx, false)
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return nil, err
	}

	o.setState(StateReporting)
	rep := o.builder.Finalize()
	o.setState(StateDone)
	return rep, nil
}

// withRetry wraps one write or existence check in rate-limit backoff.
func (o *Orchestrator) withRetry(ctx context.Context, op string, fn func() error) error {
	return retry.Do(ctx, o.opts.Retry, op, contentful.IsRateLimited, fn)
}

// retryingChecker adapts the API's existence checks for the cleaner, applying
// the run's backoff policy to each lookup.
type retryingChecker struct {
	o *Orchestrator
}

func (r *retryingChecker) EntryExists(ctx context.Context, id string) (bool, error) {
	return retry.DoWithResult(ctx, r.o.opts.Retry, "check entry "+id, contentful.IsRateLimited, func() (bool, error) {
		return r.o.api.EntryExists(ctx, id)
	})
}

func (r *retryingChecker) AssetExists(ctx context.Context, id string) (bool, error) {
	return retry.DoWithResult(ctx, r.o.opts.Retry, "check asset "+id, contentful.IsRateLimited, func() (bool, error) {
		return r.o.api.AssetExists(ctx, id)
	})
}

// newPager builds the listing pager from the run options.
func (o *Orchestrator) newPager(maxItems int) *pager.Pager {
	p := pager.New(o.opts.BatchSize, o.opts.PageDelay)
	p.MaxItems = maxItems
	return p
}

// resolveContentTypes expands the --content-type selector. An empty selector
// means one unfiltered query; a literal id passes through; a glob is matched
// against the space's content type ids.
func (o *Orchestrator) resolveContentTypes(ctx context.Context) ([]string, error) {
	selector := o.opts.ContentType
	if selector == "" {
		return []string{""}, nil
	}
	if !hasGlobMeta(selector) {
		return []string{selector}, nil
	}

	types, err := pager.Collect(ctx, o.newPager(0), "content types",
		func(ctx context.Context, skip, limit int) (*contentful.Collection[contentful.ContentType], error) {
			return o.api.ContentTypes(ctx, skip, limit)
		})
	if err != nil {
		return nil, fmt.Errorf("resolve content types: %w", err)
	}

	var matched []string
	for _, ct := range types {
		ok, err := doublestar.Match(selector, ct.Sys.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid content-type pattern %q: %w", selector, err)
		}
		if ok {
			matched = append(matched, ct.Sys.ID)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("content-type pattern %q matched nothing", selector)
	}
	logger.Info("resolved content-type pattern",
		logger.String("pattern", selector),
		logger.Int("matched", len(matched)),
	)
	return matched, nil
}

func hasGlobMeta(s string) bool {
	for _, r := range s {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// collectEntries lists every entry selected by the run options, in listing
// order, one content type at a time.
func (o *Orchestrator) collectEntries(ctx context.Context) ([]contentful.Entry, error) {
	contentTypes, err := o.resolveContentTypes(ctx)
	if err != nil {
		return nil, err
	}

	var entries []contentful.Entry
	for _, ct := range contentTypes {
		remaining := 0
		if o.opts.MaxEntries > 0 {
			remaining = o.opts.MaxEntries - len(entries)
			if remaining <= 0 {
				break
			}
		}
		page, err := pager.Collect(ctx, o.newPager(remaining), "entries",
			func(ctx context.Context, skip, limit int) (*contentful.Collection[contentful.Entry], error) {
				return o.api.Entries(ctx, contentful.ListQuery{ContentType: ct, Skip: skip, Limit: limit})
			})
		if err != nil {
			return nil, err
		}
		entries = append(entries, page...)
	}
	return entries, nil
}

// runCleanPipeline is the scan/clean/clean-and-publish pipeline. write=false
// stops after scanning; publish=true continues into publishing and the
// delete-unsafe pass.
func (o *Orchestrator) runCleanPipeline(ctx context.Context, write, publish bool) error {
	o.setState(StateScanning)
	entries, err := o.collectEntries(ctx)
	if err != nil {
		return err
	}
	logger.Info("scanning entries", logger.Int("count", len(entries)))

	for i := range entries {
		entry := &entries[i]
		o.builder.EntryProcessed()
		if err := o.processEntry(ctx, entry, write, publish); err != nil {
			// Terminal failure for this entry only; the run continues
			logger.Error("entry processing failed",
				logger.String("entry", entry.Sys.ID),
				logger.Err(err),
			)
			o.builder.AddFailure(entry.Sys.ID, "process", err)
		}
	}
	return nil
}

// processEntry cleans one entry and, depending on the mode, updates,
// publishes, and possibly deletes it.
func (o *Orchestrator) processEntry(ctx context.Context, entry *contentful.Entry, write, publish bool) error {
	if bad := cleaner.AuditLocales(entry.Fields); len(bad) > 0 {
		for _, locale := range bad {
			logger.Warn("unrecognized locale code",
				logger.String("entry", entry.Sys.ID),
				logger.String("locale", locale),
			)
		}
	}

	o.setState(StateCleaning)
	cleaned, result := o.cleaner.CleanFields(ctx, entry.Sys.ID, entry.Fields)
	if result.AnyRemoved {
		o.builder.AddRemovals(result.RemovedEntryLinks, result.RemovedAssetLinks)
		logger.Info("entry has broken links",
			logger.String("entry", entry.Sys.ID),
			logger.Int("removed", result.RemovedCount),
			logger.Int("entryLinks", result.RemovedEntryLinks),
			logger.Int("assetLinks", result.RemovedAssetLinks),
		)
	}

	if !write {
		return nil
	}

	current := entry
	if result.AnyRemoved {
		o.setState(StateUpdating)
		updated, err := o.updateEntry(ctx, entry, cleaned)
		if err != nil {
			return o.handleWriteFailure(ctx, entry, "update", err, publish)
		}
		current = updated
		o.builder.EntryUpdated()
	}

	if !publish {
		return nil
	}

	o.setState(StatePublishing)
	if err := o.publishEntry(ctx, current); err != nil {
		return o.handleWriteFailure(ctx, current, "publish", err, publish)
	}
	o.builder.EntryPublished()
	return nil
}

// updateEntry writes the cleaned field map at the entry's current version.
// The payload is recomputed identically on every retry, so repeats are safe.
func (o *Orchestrator) updateEntry(ctx context.Context, entry *contentful.Entry, cleaned contentful.Fields) (*contentful.Entry, error) {
	if o.opts.DryRun {
		logger.Info("would update entry", logger.String("entry", entry.Sys.ID))
		return entry, nil
	}

	toWrite := &contentful.Entry{Sys: entry.Sys, Fields: cleaned}
	return retry.DoWithResult(ctx, o.opts.Retry, "update entry "+entry.Sys.ID, contentful.IsRateLimited,
		func() (*contentful.Entry, error) {
			return o.api.UpdateEntry(ctx, toWrite)
		})
}

func (o *Orchestrator) publishEntry(ctx context.Context, entry *contentful.Entry) error {
	if o.opts.DryRun {
		logger.Info("would publish entry", logger.String("entry", entry.Sys.ID))
		return nil
	}
	return o.withRetry(ctx, "publish entry "+entry.Sys.ID, func() error {
		_, err := o.api.PublishEntry(ctx, entry.Sys.ID, entry.Sys.Version)
		return err
	})
}

// handleWriteFailure records a failed write. A 422 becomes a validation
// record; when it classifies as missing-required-field and the mode reaches
// the delete phase, the entry is deleted after unlinking its referrers. Other
// errors propagate to the per-entry isolation in the caller.
func (o *Orchestrator) handleWriteFailure(ctx context.Context, entry *contentful.Entry, op string, err error, deletePhase bool) error {
	if !contentful.IsValidation(err) {
		return fmt.Errorf("%s: %w", op, err)
	}

	missingRequired := contentful.IsMissingRequiredField(err)
	o.builder.AddValidationError(report.ValidationError{
		EntryID:     entry.Sys.ID,
		ContentType: entry.Sys.ContentTypeID(),
		Errors:      apiErrorDetails(err),
	}, missingRequired)
	logger.Warn("validation failure on write",
		logger.String("entry", entry.Sys.ID),
		logger.String("operation", op),
		logger.Bool("missingRequired", missingRequired),
	)

	if !missingRequired || !deletePhase {
		return nil
	}

	o.setState(StateDeletingUnsafe)
	if err := o.deleteUnsafeEntry(ctx, entry); err != nil {
		return fmt.Errorf("delete unsafe entry: %w", err)
	}
	return nil
}

func apiErrorDetails(err error) []contentful.ErrorDetail {
	var apiErr *contentful.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Errors
	}
	return nil
}
