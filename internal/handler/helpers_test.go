package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"blog-counters/internal/metrics"
	"blog-counters/internal/repository"
	"blog-counters/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mr       *miniredis.Miniredis
	store    repository.Store
	views    *ViewsHandler
	likes    *LikesHandler
	counters *CountersHandler
	recorder *service.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := repository.NewRedisStore(repository.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := metrics.NewRegistry()
	safe := service.NewSafeStore(store, m)
	viewCounter := service.NewViewCounter(safe, m)
	rec := service.NewRecorder(viewCounter, m, 1, 16)
	return &fixture{
		mr:       mr,
		store:    store,
		views:    NewViewsHandler(viewCounter, rec),
		likes:    NewLikesHandler(service.NewLikeCounter(safe, m)),
		counters: NewCountersHandler(service.NewNamedCounters(safe)),
		recorder: rec,
	}
}

// do sends a request to h with the route wildcard name set to value.
func do(h http.HandlerFunc, method, target, name, value string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.SetPathValue(name, value)
	for _, f := range mutate {
		f(req)
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
