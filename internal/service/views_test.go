package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewCounterUnwrittenSlugIsZero(t *testing.T) {
	f := newFixture(t)
	views := NewViewCounter(f.safe, f.metrics)

	n, err := views.Views(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, f.mr.Exists("views:never-seen"), "reads must not create keys")
}

func TestViewCounterSequentialRecords(t *testing.T) {
	f := newFixture(t)
	views := NewViewCounter(f.safe, f.metrics)
	ctx := context.Background()

	var n int64
	var err error
	for i := 0; i < 3; i++ {
		n, err = views.Record(ctx, "launch-day")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 3, n)

	got, err := views.Views(ctx, "launch-day")
	require.NoError(t, err)
	assert.EqualValues(t, 3, got)
}

func TestViewCounterConcurrentRecords(t *testing.T) {
	f := newFixture(t)
	views := NewViewCounter(f.safe, f.metrics)
	ctx := context.Background()
	require.NoError(t, f.mr.Set("views:busy", "10"))

	const n = 40
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := views.Record(ctx, "busy"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	got, err := views.Views(ctx, "busy")
	require.NoError(t, err)
	assert.EqualValues(t, 10+n, got)
}

func TestViewCounterErrors(t *testing.T) {
	f := newFixture(t)
	views := NewViewCounter(f.safe, f.metrics)
	ctx := context.Background()

	_, err := views.Views(ctx, "")
	assert.Equal(t, ErrMissingSlug, err)
	_, err = views.Record(ctx, "")
	assert.Equal(t, ErrMissingSlug, err)

	f.mr.Close()
	_, err = views.Views(ctx, "p")
	assert.Equal(t, ErrStoreUnavailable, err)
	_, err = views.Record(ctx, "p")
	assert.Equal(t, ErrStoreUnavailable, err)
}
