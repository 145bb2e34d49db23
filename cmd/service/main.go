// Package main is the entry point for the quote feed gateway.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/clients"
	"github.com/jsamuelsen/quoteswipe/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quoteswipe/internal/adapters/http"
	"github.com/jsamuelsen/quoteswipe/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quoteswipe/internal/app"
	"github.com/jsamuelsen/quoteswipe/internal/app/auth"
	"github.com/jsamuelsen/quoteswipe/internal/app/content"
	"github.com/jsamuelsen/quoteswipe/internal/app/feed"
	"github.com/jsamuelsen/quoteswipe/internal/app/session"
	"github.com/jsamuelsen/quoteswipe/internal/app/swipe"
	"github.com/jsamuelsen/quoteswipe/internal/app/syncqueue"
	"github.com/jsamuelsen/quoteswipe/internal/platform/cache"
	"github.com/jsamuelsen/quoteswipe/internal/platform/config"
	"github.com/jsamuelsen/quoteswipe/internal/platform/logging"
	"github.com/jsamuelsen/quoteswipe/internal/platform/telemetry"
	"github.com/jsamuelsen/quoteswipe/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)
	ctx = logging.WithContext(ctx, logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	metrics := telemetry.NewCollectors(prometheus.DefaultRegisterer)

	// 5. Upstream client and its anti-corruption adapters
	upstream := cfg.Services.Upstream

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     upstream.BaseURL,
		ServiceName: upstream.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP client: %w", err)
	}

	var (
		quoteAPI   = acl.NewQuoteAPI(httpClient, upstream.Name)
		userAPI    = acl.NewUserAPI(httpClient, upstream.Name)
		authAPI    = acl.NewAuthAPI(httpClient, upstream.Name)
		contentAPI = acl.NewContentAPI(httpClient, upstream.Name)
	)

	// 6. Request cache shared by every session
	requestCache := cache.New(cache.Options{Name: "requests", Registerer: prometheus.DefaultRegisterer})
	go requestCache.RunJanitor(ctx, cfg.Cache.JanitorInterval, cfg.Cache.MaxAge)

	// 7. Like/dislike delivery
	queue := syncqueue.New(syncqueue.Options{
		Workers:        cfg.Sync.Workers,
		BufferSize:     cfg.Sync.BufferSize,
		MaxAttempts:    cfg.Sync.MaxAttempts,
		InitialBackoff: cfg.Sync.InitialBackoff,
		MaxBackoff:     cfg.Sync.MaxBackoff,
		Recorder:       quoteAPI,
		Metrics:        metrics,
		Logger:         logger,
	})

	// 8. Application services
	contentSvc := content.New(content.Options{
		Config: content.Config{
			CategoriesTTL:   cfg.Cache.CategoriesTTL,
			MarketingTTL:    cfg.Cache.MarketingTTL,
			PreferencesTTL:  cfg.Cache.PreferencesTTL,
			SubscriptionTTL: cfg.Cache.PreferencesTTL,
			SearchTTL:       cfg.Cache.SearchTTL,
			SearchPageSize:  cfg.Feed.SearchPageSize,
		},
		Quotes:  quoteAPI,
		Users:   userAPI,
		Content: contentAPI,
		Cache:   requestCache,
	})

	sessions := session.NewManager(session.Config{
		Swipe: swipe.Config{
			Threshold:     cfg.Feed.SwipeThreshold,
			GuestLimit:    cfg.Feed.GuestSwipeLimit,
			PromoInterval: cfg.Feed.PromoInterval,
			HistoryDepth:  cfg.Feed.HistoryDepth,
			ButtonOffset:  cfg.Feed.ButtonOffset,
			UndoOffset:    cfg.Feed.UndoOffset,
			CommitDelay:   cfg.Feed.CommitDelay,
			ButtonDelay:   cfg.Feed.ButtonDelay,
			UndoDelay:     cfg.Feed.UndoDelay,
		},
		Feed: feed.Config{
			QuotesTTL:   cfg.Cache.QuotesTTL,
			SettleDelay: cfg.Feed.SettleDelay,
		},
		IdleTimeout:    cfg.Session.IdleTimeout,
		SweepInterval:  cfg.Session.SweepInterval,
		StorageQuota:   cfg.Session.StorageQuota,
		PromoCooldown:  cfg.Session.PromoCooldown,
		NavigationLock: cfg.Feed.NavigationLock,
	}, session.Deps{
		Quotes:        quoteAPI,
		Content:       contentAPI,
		Cache:         requestCache,
		Sync:          queue,
		FirstCategory: contentSvc.FirstCategory,
		Metrics:       metrics,
		Logger:        logger,
	})
	go sessions.Run(ctx)

	authSvc := auth.New(auth.Options{
		Provider: authAPI,
		Executor: app.NewExecutor(logger),
		Logger:   logger,
	})

	go contentSvc.Warm(ctx)

	// 9. Readiness checks
	healthRegistry := ports.NewHealthRegistry()
	for _, checker := range []ports.HealthChecker{httpClient, queue, sessions} {
		if err := healthRegistry.Register(checker); err != nil {
			return fmt.Errorf("registering %s health check: %w", checker.Name(), err)
		}
	}

	// 10. Create HTTP server
	server := http.New(&cfg.Server, logger)

	// 11. Setup router with all middleware and routes
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:      logger,
		ServiceName: serviceName(cfg),
		CORS:        cfg.CORS,
		Timeout:     cfg.Server.RequestTimeout,
		Sessions:    sessions,
		Health:      handlers.NewHealthHandler(healthRegistry, handlers.NewBuildInfo(Version, Commit, BuildTime), prometheus.DefaultGatherer),
		Feed:        handlers.NewFeedHandler(),
		Auth:        handlers.NewAuthHandler(authSvc),
		Content:     handlers.NewContentHandler(contentSvc),
		Pages:       handlers.NewPageHandler(),
	})

	// 12. Start server (non-blocking)
	serverErr := server.Start()

	// 13. Wait for shutdown signal
	err = waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)

	stop()
	sessions.Close()

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if drainErr := queue.Close(drainCtx); drainErr != nil {
		logger.Warn("sync queue did not drain", slog.Any("error", drainErr))
	}

	logger.Info("shutdown complete")

	return err
}

func serviceName(cfg *config.Config) string {
	if !cfg.Telemetry.Enabled {
		return ""
	}

	return cfg.Telemetry.ServiceName
}

// waitForShutdown blocks until a shutdown signal is received or the server
// fails, then drains in-flight requests.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
