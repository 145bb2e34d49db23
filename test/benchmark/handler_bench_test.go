package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	transport "github.com/jsamuelsen/quoteswipe/internal/adapters/http"
	"github.com/jsamuelsen/quoteswipe/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quoteswipe/internal/app/content"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
	"github.com/jsamuelsen/quoteswipe/internal/platform/cache"
	"github.com/jsamuelsen/quoteswipe/internal/ports"
)

func init() {
	// Set Gin to release mode for accurate benchmarks
	gin.SetMode(gin.ReleaseMode)
}

func catalogue(n int) domain.QuoteList {
	out := make(domain.QuoteList, n)
	for i := range n {
		out[i] = domain.Quote{
			ID:       domain.QuoteID(fmt.Sprint(i + 1)),
			Text:     fmt.Sprintf("Quote number %d about patience and time.", i+1),
			Author:   fmt.Sprintf("Author %d", i%50),
			Category: []string{"wisdom", "courage", "love", "humor"}[i%4],
		}
	}

	return out
}

// healthRouter is the gateway chain with only the /- routes mounted.
func healthRouter(checks ...ports.HealthChecker) *gin.Engine {
	registry := ports.NewHealthRegistry()
	for _, c := range checks {
		_ = registry.Register(c)
	}

	engine := gin.New()
	transport.SetupRouter(engine, transport.RouterConfig{
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Health: handlers.NewHealthHandler(registry, handlers.NewBuildInfo("1.0.0", "abc123", "2026-01-01T00:00:00Z"), prometheus.NewRegistry()),
	})

	return engine
}

// BenchmarkLiveness measures the full middleware chain in front of the
// liveness probe.
func BenchmarkLiveness(b *testing.B) {
	router := healthRouter()
	req := httptest.NewRequest(http.MethodGet, "/-/live", http.NoBody)

	b.ReportAllocs()

	for b.Loop() {
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
}

// BenchmarkReadiness_WithChecks measures readiness with concurrent checks.
func BenchmarkReadiness_WithChecks(b *testing.B) {
	ok := func(context.Context) error { return nil }
	router := healthRouter(
		ports.CheckFunc{CheckName: "quote-api", Fn: ok},
		ports.CheckFunc{CheckName: "sync_queue", Fn: ok},
		ports.CheckFunc{CheckName: "sessions", Fn: ok},
	)
	req := httptest.NewRequest(http.MethodGet, "/-/ready", http.NoBody)

	b.ReportAllocs()

	for b.Loop() {
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
}

// BenchmarkGestureTracker_Drag measures one drag from press to commit.
func BenchmarkGestureTracker_Drag(b *testing.B) {
	g := domain.NewGestureTracker(50)

	b.ReportAllocs()

	for b.Loop() {
		g.DragStart(0, 0)
		for x := range 20 {
			g.DragMove(float64(x*8), float64(x))
		}
		g.DragEnd(100)
		g.Reset()
	}
}

// BenchmarkCache_Hit measures a fresh hit through GetOrFetch.
func BenchmarkCache_Hit(b *testing.B) {
	c := cache.New(cache.Options{})
	list := catalogue(200)
	fetch := func(context.Context) (domain.QuoteList, error) { return list, nil }
	ctx := context.Background()

	_, _ = cache.GetOrFetch(ctx, c, "quotes:guest:wisdom", fetch, time.Minute)

	b.ReportAllocs()

	for b.Loop() {
		_, _ = cache.GetOrFetch(ctx, c, "quotes:guest:wisdom", fetch, time.Minute)
	}
}

// BenchmarkCache_ParallelHit measures hits under contention.
func BenchmarkCache_ParallelHit(b *testing.B) {
	c := cache.New(cache.Options{})
	list := catalogue(200)
	fetch := func(context.Context) (domain.QuoteList, error) { return list, nil }

	_, _ = cache.GetOrFetch(context.Background(), c, "quotes", fetch, time.Minute)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			_, _ = cache.GetOrFetch(ctx, c, "quotes", fetch, time.Minute)
		}
	})
}

// BenchmarkSearch_Match measures a case-insensitive scan of the catalogue.
func BenchmarkSearch_Match(b *testing.B) {
	list := catalogue(2000)

	b.ReportAllocs()

	for b.Loop() {
		_ = content.Match(list, "Author 4")
	}
}
