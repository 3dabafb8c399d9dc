package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"blog-counters/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Logging attaches logger to each request and emits one structured access
// line per request, with status and latency, mirrored into metrics.
func Logging(logger zerolog.Logger, m *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		access := hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
			route := routeLabel(r.URL.Path)
			m.Requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
			m.RequestDuration.WithLabelValues(route).Observe(dur.Seconds())
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("size", size).
				Dur("latency", dur).
				Msg("request completed")
		})
		return hlog.NewHandler(logger)(RequestID(access(next)))
	}
}

// routeLabel keeps metric cardinality bounded by dropping slugs and names.
func routeLabel(path string) string {
	switch {
	case strings.HasPrefix(path, "/views/"):
		if strings.HasSuffix(path, "/beacon") {
			return "/views/{slug}/beacon"
		}
		return "/views/{slug}"
	case strings.HasPrefix(path, "/likes/"):
		return "/likes/{slug}"
	case strings.HasPrefix(path, "/admin/counters/"):
		return "/admin/counters/{name}"
	case path == "/health", path == "/ready", path == "/status", path == "/metrics":
		return path
	default:
		return "other"
	}
}
