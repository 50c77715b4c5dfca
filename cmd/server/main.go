package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/webmatic/api/internal/config"
	"github.com/webmatic/api/internal/handler"
	"github.com/webmatic/api/internal/logging"
	"github.com/webmatic/api/internal/metrics"
	"github.com/webmatic/api/internal/ratelimit"
	"github.com/webmatic/api/internal/repository"
	"github.com/webmatic/api/internal/service"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	contactRepo := repository.NewPgContactRepository(pool)
	statusRepo := repository.NewPgStatusCheckRepository(pool)
	contactService := service.NewContactService(contactRepo)
	statusService := service.NewStatusService(statusRepo)
	analyticsService := service.NewAnalyticsService(contactRepo)

	m := metrics.New()

	limiter := ratelimit.New(ratelimit.Config{
		MaxCalls: cfg.RateLimit.Calls,
		Window:   cfg.RateLimit.Window(),
		MaxKeys:  cfg.RateLimit.MaxKeys,
	})
	limiter.StartJanitor(ctx, cfg.RateLimit.CleanupInterval(), func(removed int) {
		m.ObserveSweep(removed)
		if removed > 0 {
			slog.Debug("rate limit sweep", "removed", removed, "tracked", limiter.Len())
		}
	})
	m.TrackKeys(limiter.Len)

	resolver := handler.ClientKeyResolver{TrustedProxyCount: cfg.RateLimit.TrustedProxyCount}
	rlOpts := []handler.RateLimiterOption{handler.WithMetrics(m)}

	if cfg.RedisURL != "" {
		stats, closeStats := newRedisStats(ctx, cfg.RedisURL, m)
		if stats != nil {
			defer closeStats()
			rlOpts = append(rlOpts, handler.WithStats(stats))
		}
	}

	mux := handler.NewRouter(handler.Routes{
		Handler:   handler.New(pool, version),
		Contact:   handler.NewContactHandler(contactService, resolver, m),
		Status:    handler.NewStatusHandler(statusService, resolver, m),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Metrics:   m.Handler(),
	})

	rlOpts = append(rlOpts, handler.WithRoutes(mux))

	server := &http.Server{
		Addr: cfg.Addr,
		Handler: handler.Pipeline(mux, handler.PipelineConfig{
			RateLimiter:  handler.NewRateLimiter(limiter, resolver, rlOpts...),
			Resolver:     resolver,
			Metrics:      m,
			CORSOrigins:  cfg.CORSOrigins,
			TrustedHosts: cfg.TrustedHosts,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		slog.Info("server listening",
			"addr", server.Addr,
			"version", version,
			"rate_limit_calls", cfg.RateLimit.Calls,
			"rate_limit_window", cfg.RateLimit.Window(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// newRedisStats connects to Redis for decision statistics. Redis is never on
// the admission path, so a bad URL or an unreachable server only disables or
// degrades statistics.
func newRedisStats(ctx context.Context, url string, m *metrics.Metrics) (*ratelimit.RedisStats, func()) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		slog.Warn("invalid REDIS_URL, rate limit statistics disabled", "error", err)
		return nil, nil
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis unreachable, statistics writes will be retried per event", "error", err)
	}

	stats := ratelimit.NewRedisStats(rdb, ratelimit.WithStatsOnDrop(m.ObserveStatsDrop))
	return stats, func() {
		stats.Close()
		if err := rdb.Close(); err != nil {
			slog.Warn("redis close failed", "error", err)
		}
	}
}
