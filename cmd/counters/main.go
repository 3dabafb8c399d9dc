package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"blog-counters/internal/config"
	"blog-counters/internal/logging"
	"blog-counters/internal/metrics"
	"blog-counters/internal/repository"
	"blog-counters/internal/server"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var configFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "counters",
		Short:         "Serve article view and like counters backed by Redis",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	cmd.Flags().StringVar(&configFile, "config", "", "Optional config file (yaml, toml or json)")
	cmd.Flags().String("listen-addr", ":8080", "HTTP listen address")
	cmd.Flags().String("redis-addr", "localhost:6379", "Redis address")
	cmd.Flags().Int("redis-db", 0, "Redis database number")
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().Bool("log-pretty", false, "Human readable console logs")
	cmd.Flags().String("log-file", "", "Write logs to this rotating file instead of stderr")
	cmd.Flags().Int64("view-write-limit", 0, "View writes allowed per client and article per window, 0 disables")
	cmd.Flags().StringSlice("trusted-proxies", nil, "Proxy addresses or CIDRs whose X-Forwarded-For is trusted")
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}
	closer, err := logging.Setup(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to set up logging")
		return err
	}
	defer closer.Close()

	store, err := repository.NewRedisStore(repository.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Error().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect redis")
		return err
	}
	defer store.Close()

	srv := server.New(cfg, store, log.Logger, metrics.NewRegistry(), version)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
			return err
		}
		return nil
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	log.Info().Msg("server exited")
	return nil
}
