// Package cleaner walks entry field maps and removes links whose targets no
// longer exist in the remote store.
package cleaner

import (
	"context"

	"github.com/fulmenhq/cfops/internal/contentful"
	"github.com/fulmenhq/cfops/pkg/logger"
)

// Checker resolves link targets. The orchestrator passes a retry-wrapped
// adapter; tests pass fakes.
type Checker interface {
	EntryExists(ctx context.Context, id string) (bool, error)
	AssetExists(ctx context.Context, id string) (bool, error)
}

// Result summarizes one entry's cleaning pass.
type Result struct {
	AnyRemoved        bool `json:"anyRemoved"`
	RemovedCount      int  `json:"removedCount"`
	RemovedEntryLinks int  `json:"removedEntryLinks"`
	RemovedAssetLinks int  `json:"removedAssetLinks"`
}

// Cleaner validates link values against the store. Existence results are
// memoised per run keyed by target, so repeated references cost one lookup.
type Cleaner struct {
	checker Checker
	cache   map[contentful.Link]bool
}

// New creates a cleaner backed by the given checker.
func New(checker Checker) *Cleaner {
	return &Cleaner{
		checker: checker,
		cache:   make(map[contentful.Link]bool),
	}
}

// CleanFields returns a cleaned deep copy of fields plus removal statistics.
// The input map is never mutated. Removal policy is conservative: only a
// confirmed missing target removes a link. Malformed links and links whose
// existence check errored are kept. A nil field map is a no-op.
func (c *Cleaner) CleanFields(ctx context.Context, entryID string, fields contentful.Fields) (contentful.Fields, Result) {
	var result Result
	if fields == nil {
		return nil, result
	}

	cleaned := fields.Clone()
	for fieldName, locales := range cleaned {
		for locale, value := range locales {
			switch value.Kind {
			case contentful.KindSequence:
				kept := make([]*contentful.Value, 0, len(value.Seq))
				for _, element := range value.Seq {
					if c.shouldRemove(ctx, entryID, fieldName, locale, element, &result) {
						continue
					}
					kept = append(kept, element)
				}
				value.Seq = kept

			case contentful.KindLink:
				if c.shouldRemove(ctx, entryID, fieldName, locale, value, &result) {
					// Single links become an explicit null, not a deleted field
					locales[locale] = contentful.Null()
				}

			default:
				// Scalars, objects, and nulls pass through unchanged
			}
		}
	}

	result.AnyRemoved = result.RemovedCount > 0
	return cleaned, result
}

// shouldRemove decides one value's fate and bumps counters on removal.
func (c *Cleaner) shouldRemove(ctx context.Context, entryID, field, locale string, value *contentful.Value, result *Result) bool {
	if value.Kind != contentful.KindLink {
		return false
	}
	link := *value.Link

	if link.Malformed() {
		// Ambiguous data is never destroyed; only a positive miss is
		logger.Debug("keeping malformed link",
			logger.String("entry", entryID),
			logger.String("field", field),
			logger.String("locale", locale),
		)
		return false
	}

	exists, err := c.targetExists(ctx, link)
	if err != nil {
		logger.Warn("link check failed, keeping link",
			logger.String("entry", entryID),
			logger.String("field", field),
			logger.String("locale", locale),
			logger.String("target", link.String()),
			logger.Err(err),
		)
		return false
	}
	if exists {
		return false
	}

	logger.Info("removing broken link",
		logger.String("entry", entryID),
		logger.String("field", field),
		logger.String("locale", locale),
		logger.String("target", link.String()),
	)
	result.RemovedCount++
	switch link.LinkType {
	case contentful.LinkTypeEntry:
		result.RemovedEntryLinks++
	case contentful.LinkTypeAsset:
		result.RemovedAssetLinks++
	}
	return true
}

func (c *Cleaner) targetExists(ctx context.Context, link contentful.Link) (bool, error) {
	if exists, ok := c.cache[link]; ok {
		return exists, nil
	}

	var exists bool
	var err error
	switch link.LinkType {
	case contentful.LinkTypeEntry:
		exists, err = c.checker.EntryExists(ctx, link.ID)
	case contentful.LinkTypeAsset:
		exists, err = c.checker.AssetExists(ctx, link.ID)
	}
	if err != nil {
		return false, err
	}

	c.cache[link] = exists
	return exists, nil
}
