// Package pager drives paginated listing calls in fixed-size offset windows.
package pager

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/fulmenhq/cfops/internal/contentful"
	"github.com/fulmenhq/cfops/pkg/logger"
)

// ListFunc fetches one window at the given offset.
type ListFunc[T any] func(ctx context.Context, skip, limit int) (*contentful.Collection[T], error)

// Pager collects every item of a paginated endpoint. The inter-page delay is
// a static pause to stay inside the service rate limit, not an adaptive one.
type Pager struct {
	PageSize int
	Delay    time.Duration

	// MaxItems truncates collection after this many items (0 = no cap).
	MaxItems int
}

// New returns a pager with the given window size and inter-page delay.
func New(pageSize int, delay time.Duration) *Pager {
	return &Pager{PageSize: pageSize, Delay: delay}
}

// Collect fetches windows until the offset reaches the collection total,
// concatenating items. Total is re-read from every response: other actors may
// delete items mid-run and no consistency is assumed. Any error aborts the
// whole pagination; accumulated items are discarded by the caller.
func Collect[T any](ctx context.Context, p *Pager, what string, fn ListFunc[T]) ([]T, error) {
	if p.PageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", p.PageSize)
	}

	// interval 0 means an always-ready limiter
	limiter := rate.NewLimiter(rate.Every(p.Delay), 1)

	var items []T
	skip := 0
	page := 0

	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		limit := p.PageSize
		if p.MaxItems > 0 && p.MaxItems-len(items) < limit {
			limit = p.MaxItems - len(items)
		}

		col, err := fn(ctx, skip, limit)
		if err != nil {
			return nil, fmt.Errorf("page at offset %d: %w", skip, err)
		}
		page++

		items = append(items, col.Items...)
		logger.Info(fmt.Sprintf("fetched %s page", what),
			logger.Int("page", page),
			logger.Int("offset", skip),
			logger.Int("got", len(col.Items)),
			logger.Int("total", col.Total),
		)

		if p.MaxItems > 0 && len(items) >= p.MaxItems {
			return items[:p.MaxItems], nil
		}

		skip += p.PageSize
		if skip >= col.Total {
			return items, nil
		}
		// An empty page before total is reached would otherwise loop forever
		if len(col.Items) == 0 {
			return items, nil
		}
	}
}
