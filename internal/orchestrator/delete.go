package orchestrator

import (
	"context"

	"github.com/fulmenhq/cfops/internal/contentful"
	"github.com/fulmenhq/cfops/internal/report"
	"github.com/fulmenhq/cfops/pkg/logger"
	"github.com/fulmenhq/cfops/pkg/retry"
)

// runDelete deletes entries in bulk. draftsOnly keeps published entries;
// otherwise everything is unpublished first and removed.
func (o *Orchestrator) runDelete(ctx context.Context, draftsOnly bool) error {
	o.setState(StateScanning)
	entries, err := o.collectEntries(ctx)
	if err != nil {
		return err
	}

	o.setState(StateDeletingUnsafe)
	for i := range entries {
		entry := &entries[i]
		o.builder.EntryProcessed()
		if draftsOnly && entry.Sys.Published() {
			continue
		}
		if err := o.deleteOne(ctx, entry, draftsOnly); err != nil {
			logger.Error("entry delete failed",
				logger.String("entry", entry.Sys.ID),
				logger.Err(err),
			)
			o.builder.AddFailure(entry.Sys.ID, "delete", err)
		}
	}
	return nil
}

// deleteOne removes one entry, unarchiving and unpublishing as needed so the
// delete is accepted.
func (o *Orchestrator) deleteOne(ctx context.Context, entry *contentful.Entry, draftsOnly bool) error {
	reason := "delete-all-entries"
	if draftsOnly {
		reason = "delete-drafts"
	}

	if o.opts.DryRun {
		logger.Info("would delete entry", logger.String("entry", entry.Sys.ID))
		o.builder.AddDeletedEntry(report.DeletedEntry{
			EntryID:     entry.Sys.ID,
			ContentType: entry.Sys.ContentTypeID(),
			Reason:      reason,
		})
		return nil
	}

	current := entry
	if entry.Sys.Archived() {
		unarchived, err := retry.DoWithResult(ctx, o.opts.Retry, "unarchive entry "+entry.Sys.ID, contentful.IsRateLimited,
			func() (*contentful.Entry, error) {
				return o.api.UnarchiveEntry(ctx, entry.Sys.ID, entry.Sys.Version)
			})
		if err != nil {
			return err
		}
		current = unarchived
	}

	if current.Sys.Published() {
		unpublished, err := retry.DoWithResult(ctx, o.opts.Retry, "unpublish entry "+current.Sys.ID, contentful.IsRateLimited,
			func() (*contentful.Entry, error) {
				return o.api.UnpublishEntry(ctx, current.Sys.ID, current.Sys.Version)
			})
		if err != nil {
			return err
		}
		current = unpublished
	}

	err := o.withRetry(ctx, "delete entry "+current.Sys.ID, func() error {
		return o.api.DeleteEntry(ctx, current.Sys.ID, current.Sys.Version)
	})
	if err != nil {
		return err
	}

	logger.Info("deleted entry", logger.String("entry", current.Sys.ID))
	o.builder.AddDeletedEntry(report.DeletedEntry{
		EntryID:     entry.Sys.ID,
		ContentType: entry.Sys.ContentTypeID(),
		Reason:      reason,
	})
	return nil
}
