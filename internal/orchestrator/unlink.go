package orchestrator

import (
	"context"
	"fmt"

	"github.com/fulmenhq/cfops/internal/contentful"
	"github.com/fulmenhq/cfops/internal/pager"
	"github.com/fulmenhq/cfops/internal/report"
	"github.com/fulmenhq/cfops/pkg/logger"
	"github.com/fulmenhq/cfops/pkg/retry"
)

// removeLinksTo strips every entry link pointing at targetID from fields,
// in place. Sequence elements are dropped; single links become null. Returns
// whether anything changed.
func removeLinksTo(fields contentful.Fields, targetID string) bool {
	changed := false
	for _, locales := range fields {
		for locale, value := range locales {
			switch value.Kind {
			case contentful.KindSequence:
				kept := value.Seq[:0]
				for _, element := range value.Seq {
					if pointsAt(element, targetID) {
						changed = true
						continue
					}
					kept = append(kept, element)
				}
				value.Seq = kept

			case contentful.KindLink:
				if pointsAt(value, targetID) {
					locales[locale] = contentful.Null()
					changed = true
				}
			}
		}
	}
	return changed
}

func pointsAt(v *contentful.Value, targetID string) bool {
	return v.Kind == contentful.KindLink &&
		v.Link.LinkType == contentful.LinkTypeEntry &&
		v.Link.ID == targetID
}

// deleteUnsafeEntry deletes an entry flagged with a missing-required-field
// validation error. Deletion is gated by a full referrer-unlink pass: every
// entry linking to it is unarchived if needed, has the link stripped, and is
// updated, before the delete itself.
func (o *Orchestrator) deleteUnsafeEntry(ctx context.Context, entry *contentful.Entry) error {
	referrers, err := pager.Collect(ctx, o.newPager(0), "referrers",
		func(ctx context.Context, skip, limit int) (*contentful.Collection[contentful.Entry], error) {
			return o.api.Entries(ctx, contentful.ListQuery{LinksTo: entry.Sys.ID, Skip: skip, Limit: limit})
		})
	if err != nil {
		return fmt.Errorf("reverse lookup for %s: %w", entry.Sys.ID, err)
	}

	var unlinked []string
	for i := range referrers {
		referrer := &referrers[i]
		if err := o.unlinkReferrer(ctx, referrer, entry.Sys.ID); err != nil {
			return fmt.Errorf("unlink referrer %s: %w", referrer.Sys.ID, err)
		}
		unlinked = append(unlinked, referrer.Sys.ID)
	}

	if o.opts.DryRun {
		logger.Info("would delete entry",
			logger.String("entry", entry.Sys.ID),
			logger.Int("referrers", len(unlinked)),
		)
	} else {
		// Re-fetch before deleting: the failed publish attempt happened at the
		// post-update version, and the delete header must match whatever the
		// service holds now.
		current, err := retry.DoWithResult(ctx, o.opts.Retry, "get entry "+entry.Sys.ID, contentful.IsRateLimited,
			func() (*contentful.Entry, error) {
				return o.api.GetEntry(ctx, entry.Sys.ID)
			})
		if err != nil {
			return fmt.Errorf("refresh before delete: %w", err)
		}
		err = o.withRetry(ctx, "delete entry "+entry.Sys.ID, func() error {
			return o.api.DeleteEntry(ctx, current.Sys.ID, current.Sys.Version)
		})
		if err != nil {
			return err
		}
		logger.Info("deleted entry",
			logger.String("entry", entry.Sys.ID),
			logger.Int("referrers", len(unlinked)),
		)
	}

	o.builder.AddDeletedEntry(report.DeletedEntry{
		EntryID:           entry.Sys.ID,
		ContentType:       entry.Sys.ContentTypeID(),
		Reason:            "missing required field",
		UnlinkedReferrers: unlinked,
	})
	return nil
}

// unlinkReferrer removes references to targetID from one referrer and writes
// it back, unarchiving first when needed.
func (o *Orchestrator) unlinkReferrer(ctx context.Context, referrer *contentful.Entry, targetID string) error {
	current := referrer
	if referrer.Sys.Archived() {
		if o.opts.DryRun {
			logger.Info("would unarchive referrer", logger.String("entry", referrer.Sys.ID))
		} else {
			unarchived, err := retry.DoWithResult(ctx, o.opts.Retry, "unarchive entry "+referrer.Sys.ID, contentful.IsRateLimited,
				func() (*contentful.Entry, error) {
					return o.api.UnarchiveEntry(ctx, referrer.Sys.ID, referrer.Sys.Version)
				})
			if err != nil {
				return err
			}
			unarchived.Fields = referrer.Fields
			current = unarchived
		}
	}

	if !removeLinksTo(current.Fields, targetID) {
		// Reverse lookup said yes but the field walk found nothing; write
		// nothing rather than a no-op update
		logger.Debug("referrer carries no direct link",
			logger.String("entry", current.Sys.ID),
			logger.String("target", targetID),
		)
		return nil
	}

	if o.opts.DryRun {
		logger.Info("would unlink referrer",
			logger.String("entry", current.Sys.ID),
			logger.String("target", targetID),
		)
		return nil
	}

	_, err := retry.DoWithResult(ctx, o.opts.Retry, "update entry "+current.Sys.ID, contentful.IsRateLimited,
		func() (*contentful.Entry, error) {
			return o.api.UpdateEntry(ctx, current)
		})
	if err != nil {
		return err
	}
	logger.Info("unlinked referrer",
		logger.String("entry", current.Sys.ID),
		logger.String("target", targetID),
	)
	return nil
}
