// Command loadcheck verifies against a running deployment that concurrent
// view writes are never lost: N concurrent POSTs must raise the count by N.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type options struct {
	baseURL     string
	slug        string
	requests    int
	concurrency int
	timeout     time.Duration
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	var opts options
	cmd := &cobra.Command{
		Use:           "loadcheck",
		Short:         "Check that concurrent view increments are all counted",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return check(cmd.Context(), logger, opts)
		},
	}
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "http://localhost:8080", "Counter service base URL")
	cmd.Flags().StringVar(&opts.slug, "slug", fmt.Sprintf("loadcheck-%d", time.Now().Unix()), "Article slug to write to")
	cmd.Flags().IntVar(&opts.requests, "requests", 100, "Number of view writes")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 10, "Concurrent writers")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "Per-request timeout")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		logger.Error().Err(err).Msg("load check failed")
		os.Exit(1)
	}
}

type viewsPayload struct {
	Views int64  `json:"views"`
	Error string `json:"error"`
}

// check reads the count of opts.slug, fires opts.requests concurrent view
// writes and fails unless the count moved by exactly the writes that succeeded.
func check(ctx context.Context, logger zerolog.Logger, opts options) error {
	if opts.requests <= 0 || opts.concurrency <= 0 {
		return errors.New("requests and concurrency must be positive")
	}
	client := &http.Client{Timeout: opts.timeout}
	target := strings.TrimRight(opts.baseURL, "/") + "/views/" + url.PathEscape(opts.slug)

	before, err := views(ctx, client, http.MethodGet, target)
	if err != nil {
		return fmt.Errorf("read before: %w", err)
	}

	var failed atomic.Int64
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)
	for i := 0; i < opts.requests; i++ {
		g.Go(func() error {
			if _, err := views(gctx, client, http.MethodPost, target); err != nil {
				failed.Add(1)
				logger.Warn().Err(err).Msg("write failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	elapsed := time.Since(start)

	after, err := views(ctx, client, http.MethodGet, target)
	if err != nil {
		return fmt.Errorf("read after: %w", err)
	}

	want := int64(opts.requests) - failed.Load()
	got := after - before
	logger.Info().
		Str("slug", opts.slug).
		Int("requests", opts.requests).
		Int64("failed", failed.Load()).
		Int64("before", before).
		Int64("after", after).
		Dur("elapsed", elapsed).
		Msg("load check finished")
	if got != want {
		return fmt.Errorf("count moved by %d, expected %d", got, want)
	}
	return nil
}

func views(ctx context.Context, client *http.Client, method, target string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var p viewsPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return 0, fmt.Errorf("decode %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK || p.Error != "" {
		return 0, fmt.Errorf("%s %s: status %d %s", method, target, resp.StatusCode, p.Error)
	}
	return p.Views, nil
}
