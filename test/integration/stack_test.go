//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/clients"
	"github.com/jsamuelsen/quoteswipe/internal/adapters/clients/acl"
	transport "github.com/jsamuelsen/quoteswipe/internal/adapters/http"
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
	"github.com/jsamuelsen/quoteswipe/internal/platform/telemetry"
	"github.com/jsamuelsen/quoteswipe/internal/ports"
)

const animation = 300 * time.Millisecond

// stack is the gateway wired the way cmd/service wires it, in front of a
// fake upstream. Swipe animations run on a manual scheduler.
type stack struct {
	gateway  *httptest.Server
	upstream *upstream
	sched    *app.ManualScheduler
	queue    *syncqueue.Queue
	client   *clients.Client
}

func clientConfig(baseURL string) *clients.Config {
	return &clients.Config{
		BaseURL:     baseURL,
		ServiceName: "quote-api",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       100 * time.Millisecond,
			HalfOpenLimit: 1,
		},
		Logger: discard(),
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStack(t *testing.T) *stack {
	t.Helper()

	gin.SetMode(gin.TestMode)

	up := newUpstream(t)
	logger := discard()

	client, err := clients.New(clientConfig(up.URL))
	require.NoError(t, err)

	quoteAPI := acl.NewQuoteAPI(client, "quote-api")
	userAPI := acl.NewUserAPI(client, "quote-api")
	contentAPI := acl.NewContentAPI(client, "quote-api")

	metrics := telemetry.NewCollectors(prometheus.NewRegistry())
	requestCache := cache.New(cache.Options{Name: "integration"})

	queue := syncqueue.New(syncqueue.Options{
		Workers:        2,
		BufferSize:     16,
		MaxAttempts:    3,
		InitialBackoff: 5 * time.Millisecond,
		MaxBackoff:     20 * time.Millisecond,
		Recorder:       quoteAPI,
		Metrics:        metrics,
		Logger:         logger,
	})

	contentSvc := content.New(content.Options{
		Config: content.Config{
			CategoriesTTL:   time.Minute,
			MarketingTTL:    time.Minute,
			PreferencesTTL:  time.Minute,
			SubscriptionTTL: time.Minute,
			SearchTTL:       time.Minute,
			SearchPageSize:  3,
		},
		Quotes:  quoteAPI,
		Users:   userAPI,
		Content: contentAPI,
		Cache:   requestCache,
	})

	sched := app.NewManualScheduler()

	sessions := session.NewManager(session.Config{
		Swipe: swipe.Config{
			Threshold:     100,
			GuestLimit:    5,
			PromoInterval: 10,
			HistoryDepth:  50,
			ButtonOffset:  300,
			UndoOffset:    200,
			CommitDelay:   animation,
			ButtonDelay:   animation,
			UndoDelay:     animation,
		},
		Feed:           feed.Config{QuotesTTL: time.Minute},
		IdleTimeout:    time.Hour,
		SweepInterval:  time.Minute,
		NavigationLock: 500 * time.Millisecond,
	}, session.Deps{
		Quotes:        quoteAPI,
		Content:       contentAPI,
		Cache:         requestCache,
		Sync:          queue,
		FirstCategory: contentSvc.FirstCategory,
		Scheduler:     sched,
		Metrics:       metrics,
		Logger:        logger,
	})

	registry := ports.NewHealthRegistry()
	for _, c := range []ports.HealthChecker{client, queue, sessions} {
		require.NoError(t, registry.Register(c))
	}

	engine := gin.New()
	transport.SetupRouter(engine, transport.RouterConfig{
		Logger:   logger,
		Timeout:  5 * time.Second,
		Sessions: sessions,
		Health:   handlers.NewHealthHandler(registry, handlers.NewBuildInfo("integration", "none", "now"), prometheus.NewRegistry()),
		Feed:     handlers.NewFeedHandler(),
		Auth:     handlers.NewAuthHandler(auth.New(auth.Options{Provider: acl.NewAuthAPI(client, "quote-api"), Logger: logger})),
		Content:  handlers.NewContentHandler(contentSvc),
		Pages:    handlers.NewPageHandler(),
	})

	gw := httptest.NewServer(engine)

	t.Cleanup(func() {
		gw.Close()
		sessions.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_ = queue.Close(ctx)
	})

	return &stack{gateway: gw, upstream: up, sched: sched, queue: queue, client: client}
}
