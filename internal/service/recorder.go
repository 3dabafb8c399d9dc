package service

import (
	"context"
	"sync"

	"blog-counters/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Recorder records views in the background so a page load never waits on the
// store. Failures are logged and counted, never returned to the submitter.
type Recorder struct {
	views   *ViewCounter
	metrics *metrics.Registry

	mu     sync.RWMutex
	closed bool
	queue  chan string
	wg     sync.WaitGroup
}

// NewRecorder starts workers goroutines draining a queue of size slots.
func NewRecorder(views *ViewCounter, m *metrics.Registry, workers, size int) *Recorder {
	if workers < 1 {
		workers = 1
	}
	r := &Recorder{
		views:   views,
		metrics: m,
		queue:   make(chan string, size),
	}
	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go r.run()
	}
	return r
}

// Enqueue schedules one view of slug. It does not block; false means the queue
// is full or the recorder is closed and the view was dropped.
func (r *Recorder) Enqueue(slug string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.metrics.Beacons.WithLabelValues("dropped").Inc()
		return false
	}
	select {
	case r.queue <- slug:
		r.metrics.Beacons.WithLabelValues("queued").Inc()
		return true
	default:
		r.metrics.Beacons.WithLabelValues("dropped").Inc()
		return false
	}
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for slug := range r.queue {
		if _, err := r.views.Record(context.Background(), slug); err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("background view not recorded")
			r.metrics.Beacons.WithLabelValues("failed").Inc()
			continue
		}
		r.metrics.Beacons.WithLabelValues("recorded").Inc()
	}
}

// Close stops accepting views and waits for queued ones to be recorded, or
// for ctx to end.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
