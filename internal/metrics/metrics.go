package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	StoreFailures   *prometheus.CounterVec
	ViewsRecorded   prometheus.Counter
	LikeToggles     *prometheus.CounterVec
	Throttled       prometheus.Counter
	Beacons         *prometheus.CounterVec
}

// NewRegistry builds the collectors on a private registry so several servers
// can live in one process (tests do this).
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "counters_requests_total",
			Help: "Total requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "counters_request_duration_seconds",
			Help:    "Request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		StoreFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "counters_store_failures_total",
			Help: "Key-value store operations that failed and were degraded",
		}, []string{"op"}),
		ViewsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "counters_views_recorded_total",
			Help: "Article views successfully recorded",
		}),
		LikeToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "counters_like_toggles_total",
			Help: "Like toggles by resulting action",
		}, []string{"action"}),
		Throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "counters_throttled_writes_total",
			Help: "View writes rejected by the per-client throttle",
		}),
		Beacons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "counters_beacons_total",
			Help: "Fire-and-forget view beacons by outcome",
		}, []string{"outcome"}),
	}
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.Requests, r.RequestDuration, r.StoreFailures, r.ViewsRecorded,
		r.LikeToggles, r.Throttled, r.Beacons,
	)
	return r
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
