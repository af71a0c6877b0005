package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZaguanLabs/gatito"
	"github.com/ZaguanLabs/gatito/cache"
	"github.com/ZaguanLabs/gatito/memo"
	"github.com/ZaguanLabs/gatito/site"
	"github.com/ZaguanLabs/gatito/sink"
)

func runServe(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Config file (default: $GATITO_CONFIG or gatito.yaml)")
	addr := fs.String("addr", "", "Listen address (default: server.addr:server.port)")
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := gatito.LoadConfig(gatito.ConfigPath(*configPath))
	if err != nil {
		return err
	}
	if *addr == "" {
		*addr = cfg.ListenAddr()
	}

	logger := newLogger(stderr, *verbose)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h, cleanup, err := newHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", *addr, err)
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Warn("gatito listening", "addr", ln.Addr().String(), "site", cfg.Site.URL)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newHandler wires the site from cfg. cleanup flushes pending analytics and
// closes the validator store.
func newHandler(ctx context.Context, cfg gatito.Config, logger *slog.Logger) (http.Handler, func(), error) {
	if cfg.Site.Page == "" {
		return nil, nil, &gatito.ConfigError{Message: "site.page is required to serve"}
	}
	page, err := readInput(cfg.Site.Page)
	if err != nil {
		return nil, nil, err
	}

	analytics, err := newSink(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	reporter := gatito.NewReporter(analytics,
		gatito.WithReporterLogger(logger),
		gatito.WithSendTimeout(cfg.AnalyticsTimeout()),
	)

	validators, closeStore, err := newValidators(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	s, err := site.New(ctx, cfg, page,
		site.WithLogger(logger),
		site.WithReporter(reporter),
		site.WithValidators(validators),
	)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	cleanup := func() {
		reporter.Flush()
		closeStore()
	}
	return s.Handler(), cleanup, nil
}

// newSink posts to the configured collector, or logs events at debug level.
func newSink(cfg gatito.Config, logger *slog.Logger) (gatito.AnalyticsSink, error) {
	if cfg.Analytics.Endpoint == "" {
		return sink.NewLogSink(logger, slog.LevelDebug), nil
	}
	return sink.NewCollectorSink(sink.HTTPConfig{
		Endpoint:          cfg.Analytics.Endpoint,
		Timeout:           cfg.AnalyticsTimeout(),
		RequestsPerMinute: cfg.Analytics.RequestsPerMinute,
	})
}

// newValidators memoizes validators in Redis when cache.redisURL is set and
// in process memory otherwise.
func newValidators(cfg gatito.Config, logger *slog.Logger) (*gatito.ValidatorSet, func(), error) {
	ttl := cfg.CacheTTL()
	if ttl <= 0 {
		ttl = memo.DefaultTTL
	}

	if cfg.Cache.RedisURL == "" {
		return gatito.CachedValidators(cfg.Cache.MaxSize, memo.WithTTL(ttl)), func() {}, nil
	}

	store, err := cache.NewRedisCache[bool](cache.RedisConfig{
		URL:    cfg.Cache.RedisURL,
		TTL:    ttl,
		Logger: logger,
	})
	if err != nil {
		return nil, nil, &gatito.ConfigError{Message: "connect to redis", Cause: err}
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Warn("close redis", "error", err)
		}
	}
	return gatito.SharedValidators(store), closeStore, nil
}
