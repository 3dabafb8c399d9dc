// Package server assembles the counter routes and middleware into an HTTP server.
package server

import (
	"context"
	"errors"
	"net/http"

	"blog-counters/internal/config"
	"blog-counters/internal/handler"
	"blog-counters/internal/metrics"
	"blog-counters/internal/middleware"
	"blog-counters/internal/repository"
	"blog-counters/internal/service"

	"github.com/rs/zerolog"
)

// Server owns the HTTP listener and the background view recorder.
type Server struct {
	srv      *http.Server
	recorder *service.Recorder
	logger   zerolog.Logger
}

// New wires every route on top of store.
func New(cfg config.Config, store repository.Store, logger zerolog.Logger, m *metrics.Registry, version string) *Server {
	safe := service.NewSafeStore(store, m)
	views := service.NewViewCounter(safe, m)
	likes := service.NewLikeCounter(safe, m)
	recorder := service.NewRecorder(views, m, cfg.BeaconWorkers, cfg.BeaconQueueSize)
	trusted, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		logger.Warn().Err(err).Msg("ignoring trusted proxies, throttling by peer address")
	}
	throttle := middleware.ThrottleWrites(service.NewThrottle(store, cfg.ViewWriteLimit, cfg.ViewWriteWindow), m, trusted)

	// only the routes that act on a caller identity read the bearer token
	authenticate := func(h http.Handler) http.Handler { return h }
	if cfg.JWTSecret != "" {
		authenticate = middleware.Authenticate([]byte(cfg.JWTSecret), cfg.JWTIssuer)
	} else {
		logger.Warn().Msg("JWT_SECRET not set: admin counters disabled, likes identify users by userId only")
	}

	viewsH := handler.NewViewsHandler(views, recorder)
	likesH := handler.NewLikesHandler(likes)
	health := handler.NewHealthHandler(store, version)

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/health", health.Liveness)
	mux.HandleFunc("/ready", health.Readiness)
	mux.HandleFunc("/status", health.Status)

	// the {$} routes exist so a missing slug gets a 400 instead of a 404
	mux.Handle("/views/{$}", viewsH)
	mux.Handle("/views/{slug}", throttle(viewsH))
	mux.Handle("/views/{slug}/beacon", throttle(http.HandlerFunc(viewsH.Beacon)))
	mux.Handle("/likes/{$}", likesH)
	mux.Handle("/likes/{slug}", authenticate(likesH))

	if cfg.JWTSecret != "" {
		counters := handler.NewCountersHandler(service.NewNamedCounters(safe))
		mux.Handle("/admin/counters/{name}", authenticate(middleware.RequireRole("admin")(counters)))
	}

	// middleware chain
	var h http.Handler = mux
	h = middleware.RequestSizeLimit(middleware.MaxRequestSize)(h)
	h = middleware.Recover(h)
	h = middleware.Logging(logger, m)(h)

	return &Server{
		srv:      &http.Server{Addr: cfg.ListenAddr, Handler: h},
		recorder: recorder,
		logger:   logger,
	}
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Msgf("listening %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then flushes queued background views.
func (s *Server) Shutdown(ctx context.Context) error {
	return errors.Join(s.srv.Shutdown(ctx), s.recorder.Close(ctx))
}
