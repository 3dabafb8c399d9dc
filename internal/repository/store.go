package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("repository: key not found")

// Store is the key-value backend of the counters. Every method is one round
// trip; atomicity comes from the backend's own primitives, implementations
// keep no counter state in process.
type Store interface {
	// Incr atomically adds one to key and returns the new value. A missing key counts as 0.
	Incr(ctx context.Context, key string) (int64, error)

	// Decr atomically subtracts one from key and returns the new value.
	Decr(ctx context.Context, key string) (int64, error)

	// Get returns the raw value stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key. A zero ttl keeps the key forever.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// LikeStatus reads the total at countKey and, when member is not empty,
	// whether member belongs to setKey. Both lookups share one round trip.
	LikeStatus(ctx context.Context, countKey, setKey, member string) (count int64, isMember bool, err error)

	// ToggleMember adds member to setKey and increments countKey, or removes it
	// and decrements countKey when already present, as a single atomic step.
	// It returns whether member is in the set afterwards and the new total.
	ToggleMember(ctx context.Context, setKey, countKey, member string) (isMember bool, count int64, err error)

	// SlidingWindow records an event now and returns the number of events within the window.
	SlidingWindow(ctx context.Context, key string, windowMillis int64) (int64, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	Close() error
}
