package pager

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fulmenhq/cfops/internal/contentful"
)

// fakeListing serves windows over a fixed item count, recording each call.
type fakeListing struct {
	total int
	calls []int // offsets requested
}

func (f *fakeListing) list(_ context.Context, skip, limit int) (*contentful.Collection[int], error) {
	f.calls = append(f.calls, skip)
	var items []int
	for i := skip; i < f.total && i < skip+limit; i++ {
		items = append(items, i)
	}
	return &contentful.Collection[int]{Total: f.total, Skip: skip, Limit: limit, Items: items}, nil
}

func TestCollectTwoPages(t *testing.T) {
	listing := &fakeListing{total: 150}
	p := New(100, 0)

	items, err := Collect(context.Background(), p, "entries", listing.list)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(items) != 150 {
		t.Errorf("expected 150 items, got %d", len(items))
	}
	if len(listing.calls) != 2 {
		t.Errorf("expected exactly 2 page requests, got %d (%v)", len(listing.calls), listing.calls)
	}
	if listing.calls[0] != 0 || listing.calls[1] != 100 {
		t.Errorf("offsets must increase by page size: %v", listing.calls)
	}
	// Listing order preserved
	for i, item := range items {
		if item != i {
			t.Fatalf("items out of order at %d: %d", i, item)
		}
	}
}

func TestCollectExactMultiple(t *testing.T) {
	listing := &fakeListing{total: 200}
	items, err := Collect(context.Background(), New(100, 0), "entries", listing.list)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(items) != 200 || len(listing.calls) != 2 {
		t.Errorf("expected 200 items in 2 pages, got %d in %d", len(items), len(listing.calls))
	}
}

func TestCollectEmpty(t *testing.T) {
	listing := &fakeListing{total: 0}
	items, err := Collect(context.Background(), New(100, 0), "entries", listing.list)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
	if len(listing.calls) != 1 {
		t.Errorf("expected a single probe request, got %d", len(listing.calls))
	}
}

func TestCollectRereadsTotal(t *testing.T) {
	// Total shrinks between pages, as when another actor deletes entries.
	calls := 0
	fn := func(_ context.Context, skip, limit int) (*contentful.Collection[int], error) {
		calls++
		if calls == 1 {
			items := make([]int, limit)
			return &contentful.Collection[int]{Total: 500, Items: items}, nil
		}
		// Second page reports a collapsed total; pagination must stop here.
		return &contentful.Collection[int]{Total: 120, Items: []int{1, 2}}, nil
	}

	_, err := Collect(context.Background(), New(100, 0), "entries", fn)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected pagination to stop after shrunken total, got %d calls", calls)
	}
}

func TestCollectMaxItems(t *testing.T) {
	listing := &fakeListing{total: 1000}
	p := New(100, 0)
	p.MaxItems = 250

	items, err := Collect(context.Background(), p, "entries", listing.list)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(items) != 250 {
		t.Errorf("expected 250 items, got %d", len(items))
	}
	if len(listing.calls) != 3 {
		t.Errorf("expected 3 page requests, got %d", len(listing.calls))
	}
}

func TestCollectAbortsOnError(t *testing.T) {
	boom := errors.New("connection reset")
	calls := 0
	fn := func(_ context.Context, skip, limit int) (*contentful.Collection[int], error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		items := make([]int, limit)
		return &contentful.Collection[int]{Total: 300, Items: items}, nil
	}

	_, err := Collect(context.Background(), New(100, 0), "entries", fn)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped listing error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("error must abort pagination, got %d calls", calls)
	}
}

func TestCollectDelayBetweenPages(t *testing.T) {
	listing := &fakeListing{total: 250}
	p := New(100, 30*time.Millisecond)

	start := time.Now()
	if _, err := Collect(context.Background(), p, "entries", listing.list); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	// Three pages means at least two waits after the initial token.
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("expected inter-page delays, finished in %v", elapsed)
	}
}

func TestCollectRejectsZeroPageSize(t *testing.T) {
	_, err := Collect(context.Background(), New(0, 0), "entries", func(_ context.Context, _, _ int) (*contentful.Collection[int], error) {
		return nil, fmt.Errorf("should not be called")
	})
	if err == nil {
		t.Error("expected error for zero page size")
	}
}
