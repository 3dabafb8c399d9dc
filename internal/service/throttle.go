package service

import (
	"context"
	"time"

	"blog-counters/internal/repository"
)

// Throttle caps how many writes one client may make against one article within
// a sliding window. A zero limit disables it.
type Throttle struct {
	store  repository.Store
	limit  int64
	window time.Duration
}

// NewThrottle constructs a Throttle.
func NewThrottle(s repository.Store, limit int64, window time.Duration) *Throttle {
	return &Throttle{store: s, limit: limit, window: window}
}

func (t *Throttle) Enabled() bool { return t != nil && t.limit > 0 }

func (t *Throttle) Limit() int64 { return t.limit }

// Allow records a write identified by key and reports whether it fits the
// limit, with the quota left in the current window.
func (t *Throttle) Allow(ctx context.Context, key string) (bool, int64, error) {
	if !t.Enabled() {
		return true, 0, nil
	}
	count, err := t.store.SlidingWindow(ctx, "throttle:"+key, t.window.Milliseconds())
	if err != nil {
		return false, 0, err
	}
	remaining := t.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= t.limit, remaining, nil
}
