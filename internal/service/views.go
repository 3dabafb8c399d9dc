package service

import (
	"context"

	"blog-counters/internal/metrics"
	"blog-counters/internal/repository"
)

// ViewCounter tracks per-article visit counts at views:<slug>.
type ViewCounter struct {
	store   *SafeStore
	metrics *metrics.Registry
}

func NewViewCounter(s *SafeStore, m *metrics.Registry) *ViewCounter {
	return &ViewCounter{store: s, metrics: m}
}

// Views returns the visit count of slug; an article never visited has 0.
func (v *ViewCounter) Views(ctx context.Context, slug string) (int64, error) {
	if slug == "" {
		return 0, ErrMissingSlug
	}
	n, ok := v.store.Get(ctx, repository.ViewsKey(slug))
	if !ok {
		return 0, ErrStoreUnavailable
	}
	return n, nil
}

// Record counts one visit with the store's atomic increment and returns the new count.
func (v *ViewCounter) Record(ctx context.Context, slug string) (int64, error) {
	if slug == "" {
		return 0, ErrMissingSlug
	}
	n, ok := v.store.Incr(ctx, repository.ViewsKey(slug))
	if !ok {
		return 0, ErrStoreUnavailable
	}
	v.metrics.ViewsRecorded.Inc()
	return n, nil
}
