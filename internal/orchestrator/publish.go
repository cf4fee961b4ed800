package orchestrator

import (
	"context"

	"github.com/fulmenhq/cfops/internal/contentful"
	"github.com/fulmenhq/cfops/internal/pager"
	"github.com/fulmenhq/cfops/internal/report"
	"github.com/fulmenhq/cfops/pkg/logger"
)

// runPublish publishes every draft or changed entry and/or asset. Records
// that are already current are skipped.
func (o *Orchestrator) runPublish(ctx context.Context, entries, assets bool) error {
	o.setState(StateScanning)

	if entries {
		list, err := o.collectEntries(ctx)
		if err != nil {
			return err
		}
		o.setState(StatePublishing)
		for i := range list {
			entry := &list[i]
			o.builder.EntryProcessed()
			if entry.Sys.Archived() {
				logger.Debug("skipping archived entry", logger.String("entry", entry.Sys.ID))
				continue
			}
			if !entry.Sys.Draft() && !entry.Sys.Changed() {
				continue
			}
			if err := o.publishOne(ctx, entry); err != nil {
				logger.Error("entry publish failed",
					logger.String("entry", entry.Sys.ID),
					logger.Err(err),
				)
				o.builder.AddFailure(entry.Sys.ID, "publish", err)
			}
		}
	}

	if assets {
		list, err := pager.Collect(ctx, o.newPager(o.opts.MaxEntries), "assets",
			func(ctx context.Context, skip, limit int) (*contentful.Collection[contentful.Asset], error) {
				return o.api.Assets(ctx, contentful.ListQuery{Skip: skip, Limit: limit})
			})
		if err != nil {
			return err
		}
		o.setState(StatePublishing)
		for i := range list {
			asset := &list[i]
			if asset.Sys.Archived() || (!asset.Sys.Draft() && !asset.Sys.Changed()) {
				continue
			}
			if err := o.publishAsset(ctx, asset); err != nil {
				logger.Error("asset publish failed",
					logger.String("asset", asset.Sys.ID),
					logger.Err(err),
				)
				o.builder.AddFailure(asset.Sys.ID, "publish-asset", err)
			}
		}
	}

	return nil
}

// publishOne publishes one entry, recording validation failures instead of
// failing the entry when the API rejects it.
func (o *Orchestrator) publishOne(ctx context.Context, entry *contentful.Entry) error {
	err := o.publishEntry(ctx, entry)
	if err != nil {
		if contentful.IsValidation(err) {
			o.builder.AddValidationError(report.ValidationError{
				EntryID:     entry.Sys.ID,
				ContentType: entry.Sys.ContentTypeID(),
				Errors:      apiErrorDetails(err),
			}, contentful.IsMissingRequiredField(err))
			return nil
		}
		return err
	}
	o.builder.EntryPublished()
	return nil
}

func (o *Orchestrator) publishAsset(ctx context.Context, asset *contentful.Asset) error {
	if o.opts.DryRun {
		logger.Info("would publish asset", logger.String("asset", asset.Sys.ID))
		o.builder.AssetPublished()
		return nil
	}
	err := o.withRetry(ctx, "publish asset "+asset.Sys.ID, func() error {
		_, err := o.api.PublishAsset(ctx, asset.Sys.ID, asset.Sys.Version)
		return err
	})
	if err != nil {
		return err
	}
	o.builder.AssetPublished()
	return nil
}
