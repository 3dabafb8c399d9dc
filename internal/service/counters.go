package service

import (
	"context"
	"time"

	"blog-counters/internal/repository"
)

// NamedCounters exposes arbitrary counters stored at counter:<name>.
type NamedCounters struct {
	store *SafeStore
}

func NewNamedCounters(s *SafeStore) *NamedCounters {
	return &NamedCounters{store: s}
}

func (c *NamedCounters) Get(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, ErrMissingName
	}
	n, ok := c.store.Get(ctx, repository.CounterKey(name))
	if !ok {
		return 0, ErrStoreUnavailable
	}
	return n, nil
}

// Add increments the counter, or decrements it when decrement is set.
func (c *NamedCounters) Add(ctx context.Context, name string, decrement bool) (int64, error) {
	if name == "" {
		return 0, ErrMissingName
	}
	key := repository.CounterKey(name)
	var (
		n  int64
		ok bool
	)
	if decrement {
		n, ok = c.store.Decr(ctx, key)
	} else {
		n, ok = c.store.Incr(ctx, key)
	}
	if !ok {
		return 0, ErrStoreUnavailable
	}
	return n, nil
}

// Set overwrites the counter; a positive ttl makes it expire.
func (c *NamedCounters) Set(ctx context.Context, name string, value int64, ttl time.Duration) error {
	if name == "" {
		return ErrMissingName
	}
	if !c.store.Set(ctx, repository.CounterKey(name), value, ttl) {
		return ErrStoreUnavailable
	}
	return nil
}
