package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestCache(t *testing.T) (*Cache, *FakeClock) {
	t.Helper()

	clock := NewFakeClock(epoch)

	return New(Options{Name: "test", Clock: clock}), clock
}

func countingFetcher[T any](calls *atomic.Int32, value T) func(context.Context) (T, error) {
	return func(context.Context) (T, error) {
		calls.Add(1)
		return value, nil
	}
}

func TestGetOrFetch_WithinTTLFetchesOnce(t *testing.T) {
	c, clock := newTestCache(t)
	ctx := context.Background()

	var calls atomic.Int32

	first, err := GetOrFetch(ctx, c, "stats", countingFetcher(&calls, 42), time.Minute)
	require.NoError(t, err)

	clock.Advance(59 * time.Second)

	second, err := GetOrFetch(ctx, c, "stats", countingFetcher(&calls, 99), time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 42, first)
	assert.Equal(t, 42, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrFetch_AfterTTLRefetchesAndOverwrites(t *testing.T) {
	c, clock := newTestCache(t)
	ctx := context.Background()

	var calls atomic.Int32

	_, err := GetOrFetch(ctx, c, "stats", countingFetcher(&calls, "old"), time.Minute)
	require.NoError(t, err)

	clock.Advance(time.Minute)

	got, err := GetOrFetch(ctx, c, "stats", countingFetcher(&calls, "new"), time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "new", got)
	assert.Equal(t, int32(2), calls.Load())

	v, ok := c.Get("stats", time.Minute)
	require.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestGetOrFetch_ExpiredEntriesAreNotDeleted(t *testing.T) {
	c, clock := newTestCache(t)
	c.Set("k", 1)

	clock.Advance(time.Hour)

	_, ok := c.Get("k", time.Minute)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	v, ok := c.Get("k", 2*time.Hour)
	assert.True(t, ok, "a longer ttl still sees the entry")
	assert.Equal(t, 1, v)
}

func TestGetOrFetch_ConcurrentCallersShareOneFetch(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var calls atomic.Int32

	release := make(chan struct{})
	started := make(chan struct{})

	fetch := func(context.Context) ([]string, error) {
		if calls.Add(1) == 1 {
			close(started)
		}

		<-release

		return []string{"a", "b"}, nil
	}

	const callers = 8

	var wg sync.WaitGroup

	results := make([][]string, callers)

	for i := range callers {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			v, err := GetOrFetch(ctx, c, "reviews", fetch, time.Minute)
			assert.NoError(t, err)

			results[i] = v
		}(i)
	}

	<-started
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())

	for _, r := range results {
		assert.Equal(t, []string{"a", "b"}, r)
	}
}

func TestGetOrFetch_ErrorsAreNotCached(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	boom := errors.New("upstream down")

	_, err := GetOrFetch(ctx, c, "k", func(context.Context) (int, error) {
		return 0, boom
	}, time.Minute)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := GetOrFetch(ctx, c, "k", func(context.Context) (int, error) {
		return 7, nil
	}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestGetOrFetch_CallerCancellation(t *testing.T) {
	c, _ := newTestCache(t)

	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GetOrFetch(ctx, c, "slow", func(context.Context) (int, error) {
		<-release
		return 1, nil
	}, time.Minute)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetOrFetch_TypeMismatchRefetches(t *testing.T) {
	c, _ := newTestCache(t)
	c.Set("k", "a string")

	v, err := GetOrFetch(context.Background(), c, "k", func(context.Context) (int, error) {
		return 3, nil
	}, time.Minute)

	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var calls atomic.Int32

	_, _ = GetOrFetch(ctx, c, "prefs", countingFetcher(&calls, 1), time.Hour)
	c.Invalidate("prefs")
	_, _ = GetOrFetch(ctx, c, "prefs", countingFetcher(&calls, 1), time.Hour)

	assert.Equal(t, int32(2), calls.Load())
}

func TestInvalidate_DetachedFetchDoesNotOverwrite(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan string)

	go func() {
		v, _ := GetOrFetch(ctx, c, "prefs", func(context.Context) (string, error) {
			close(started)
			<-release

			return "stale", nil
		}, time.Hour)
		done <- v
	}()

	<-started
	c.Invalidate("prefs")

	v, err := GetOrFetch(ctx, c, "prefs", func(context.Context) (string, error) {
		return "fresh", nil
	}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)

	close(release)
	assert.Equal(t, "stale", <-done, "the detached caller still gets its own result")

	got, ok := c.Get("prefs", time.Hour)
	require.True(t, ok)
	assert.Equal(t, "fresh", got)
}

func TestInvalidatePrefix(t *testing.T) {
	c, _ := newTestCache(t)
	c.Set("quotes:all", 1)
	c.Set("quotes:love", 2)
	c.Set("categories", 3)

	removed := c.InvalidatePrefix("quotes:")

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())
}

func TestPurge(t *testing.T) {
	c, clock := newTestCache(t)
	c.Set("old", 1)
	clock.Advance(10 * time.Minute)
	c.Set("new", 2)

	removed := c.Purge(5 * time.Minute)

	assert.Equal(t, 1, removed)
	_, ok := c.Get("new", time.Minute)
	assert.True(t, ok)
}

func TestRunJanitor_StopsOnCancel(t *testing.T) {
	c, _ := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})

	go func() {
		c.RunJanitor(ctx, time.Millisecond, time.Minute)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(Options{Name: "metrics", Clock: NewFakeClock(epoch), Registerer: reg})
	ctx := context.Background()

	var calls atomic.Int32

	_, _ = GetOrFetch(ctx, c, "k", countingFetcher(&calls, 1), time.Minute)
	_, _ = GetOrFetch(ctx, c, "k", countingFetcher(&calls, 1), time.Minute)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}

	for _, mf := range families {
		if mf.GetName() != "quoteswipe_cache_requests_total" {
			continue
		}

		for _, m := range mf.GetMetric() {
			counts[labelValue(m, "result")] = m.GetCounter().GetValue()
		}
	}

	assert.InDelta(t, 1, counts[resultMiss], 0)
	assert.InDelta(t, 1, counts[resultHit], 0)
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}

	return ""
}
