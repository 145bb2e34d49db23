package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultHit    = "hit"
	resultMiss   = "miss"
	resultShared = "shared"
)

type metrics struct {
	requests *prometheus.CounterVec
	evicted  *prometheus.CounterVec
}

// newMetrics builds the cache collectors. A nil registerer leaves them
// unregistered so several caches can coexist in tests.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quoteswipe",
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache lookups by outcome. shared counts callers served by a fetch that had more than one waiter.",
		}, []string{"cache", "result"}),
		evicted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quoteswipe",
			Subsystem: "cache",
			Name:      "evicted_total",
			Help:      "Entries removed by the janitor.",
		}, []string{"cache"}),
	}
}
