package service

import (
	"testing"

	"blog-counters/internal/metrics"
	"blog-counters/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mr      *miniredis.Miniredis
	store   repository.Store
	safe    *SafeStore
	metrics *metrics.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := repository.NewRedisStore(repository.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	m := metrics.NewRegistry()
	return &fixture{mr: mr, store: store, safe: NewSafeStore(store, m), metrics: m}
}
