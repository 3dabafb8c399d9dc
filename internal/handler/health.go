package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether the counter store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	store   Pinger
	version string
	started time.Time
}

func NewHealthHandler(store Pinger, version string) *HealthHandler {
	return &HealthHandler{store: store, version: version, started: time.Now()}
}

// LivenessResponse represents liveness probe response.
type LivenessResponse struct {
	Status string `json:"status"`
	Time   int64  `json:"timestamp"`
}

// ReadinessResponse represents readiness probe response.
type ReadinessResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis"`
}

// Liveness returns 200 if the service is running.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cacheNoStore, LivenessResponse{
		Status: "alive",
		Time:   time.Now().Unix(),
	})
}

// Readiness returns 200 when the store answers a ping, 503 otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if _, err := h.ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, cacheNoStore, ReadinessResponse{Status: "unavailable", Redis: "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, cacheNoStore, ReadinessResponse{Status: "ready", Redis: "ok"})
}

// Status returns detailed status information. It reports "degraded" rather
// than failing when the store is down, since reads still answer with zeroes.
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	latency, err := h.ping(r.Context())
	status, redis := "healthy", "ok"
	if err != nil {
		status, redis = "degraded", "unreachable"
	}
	w.Header().Set("X-Response-Time", latency.String())
	writeJSON(w, http.StatusOK, cacheNoStore, map[string]interface{}{
		"service":   "blog-counters",
		"version":   h.version,
		"status":    status,
		"redis":     redis,
		"latency":   latency.String(),
		"timestamp": time.Now().Unix(),
		"uptime":    time.Since(h.started).Seconds(),
	})
}

func (h *HealthHandler) ping(ctx context.Context) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	start := time.Now()
	err := h.store.Ping(ctx)
	return time.Since(start), err
}
