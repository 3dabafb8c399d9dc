package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"blog-counters/internal/metrics"
	"blog-counters/internal/repository"

	"github.com/rs/zerolog/log"
)

// SafeStore contains store failures. Each method makes exactly one call to the
// underlying store and never returns an error: a failure is logged, counted and
// reported as ok == false so callers can degrade.
type SafeStore struct {
	store   repository.Store
	metrics *metrics.Registry
}

// NewSafeStore wraps s.
func NewSafeStore(s repository.Store, m *metrics.Registry) *SafeStore {
	return &SafeStore{store: s, metrics: m}
}

func (s *SafeStore) fail(ctx context.Context, op, key string, err error) {
	log.Ctx(ctx).Error().Err(err).Str("op", op).Str("key", key).Msg("counter store operation failed")
	s.metrics.StoreFailures.WithLabelValues(op).Inc()
}

// Incr increments key by one.
func (s *SafeStore) Incr(ctx context.Context, key string) (int64, bool) {
	n, err := s.store.Incr(ctx, key)
	if err != nil {
		s.fail(ctx, "incr", key, err)
		return 0, false
	}
	return n, true
}

// Decr decrements key by one.
func (s *SafeStore) Decr(ctx context.Context, key string) (int64, bool) {
	n, err := s.store.Decr(ctx, key)
	if err != nil {
		s.fail(ctx, "decr", key, err)
		return 0, false
	}
	return n, true
}

// Get reads an integer counter. A missing key reads as 0 and is not a failure;
// a value that is not an integer is.
func (s *SafeStore) Get(ctx context.Context, key string) (int64, bool) {
	v, err := s.store.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, true
	}
	if err != nil {
		s.fail(ctx, "get", key, err)
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		s.fail(ctx, "get", key, err)
		return 0, false
	}
	return n, true
}

// Set stores value at key, expiring it after ttl when ttl > 0.
func (s *SafeStore) Set(ctx context.Context, key string, value int64, ttl time.Duration) bool {
	if err := s.store.Set(ctx, key, value, ttl); err != nil {
		s.fail(ctx, "set", key, err)
		return false
	}
	return true
}

// LikeStatus reads a like total and, when member is set, its membership.
func (s *SafeStore) LikeStatus(ctx context.Context, countKey, setKey, member string) (int64, bool, bool) {
	count, liked, err := s.store.LikeStatus(ctx, countKey, setKey, member)
	if err != nil {
		s.fail(ctx, "like_status", countKey, err)
		return 0, false, false
	}
	return count, liked, true
}

// ToggleMember flips member's membership in setKey and adjusts countKey.
func (s *SafeStore) ToggleMember(ctx context.Context, setKey, countKey, member string) (bool, int64, bool) {
	liked, count, err := s.store.ToggleMember(ctx, setKey, countKey, member)
	if err != nil {
		s.fail(ctx, "toggle_member", setKey, err)
		return false, 0, false
	}
	return liked, count, true
}
