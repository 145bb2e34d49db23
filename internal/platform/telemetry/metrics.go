package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Swipe outcomes.
const (
	OutcomeCommitted  = "committed"
	OutcomeGatedAuth  = "gated_auth"
	OutcomeGatedPromo = "gated_promo"
)

// Sync job outcomes.
const (
	SyncSucceeded = "succeeded"
	SyncRetried   = "retried"
	SyncFailed    = "failed"
	SyncDropped   = "dropped"
)

// Collectors are the Prometheus collectors for feed activity, scraped on
// /-/metrics. A nil *Collectors is valid and records nothing.
type Collectors struct {
	swipes         *prometheus.CounterVec
	undos          prometheus.Counter
	syncJobs       *prometheus.CounterVec
	syncQueueDepth prometheus.Gauge
	activeSessions prometheus.Gauge
	feedLoads      *prometheus.CounterVec
}

// NewCollectors creates the collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)

	return &Collectors{
		swipes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quoteswipe",
			Name:      "swipes_total",
			Help:      "Swipes by direction, viewer kind and outcome.",
		}, []string{"direction", "viewer", "outcome"}),
		undos: f.NewCounter(prometheus.CounterOpts{
			Namespace: "quoteswipe",
			Name:      "undos_total",
			Help:      "Undo operations applied.",
		}),
		syncJobs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quoteswipe",
			Subsystem: "sync",
			Name:      "jobs_total",
			Help:      "Like and dislike sync attempts by outcome.",
		}, []string{"kind", "outcome"}),
		syncQueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "quoteswipe",
			Subsystem: "sync",
			Name:      "queue_depth",
			Help:      "Jobs waiting in the sync queue.",
		}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "quoteswipe",
			Name:      "active_sessions",
			Help:      "Viewer sessions currently held in memory.",
		}),
		feedLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quoteswipe",
			Subsystem: "feed",
			Name:      "loads_total",
			Help:      "Quote list loads by source: mirror, upstream or refresh.",
		}, []string{"source"}),
	}
}

// Swipe records a swipe attempt.
func (c *Collectors) Swipe(direction string, authenticated bool, outcome string) {
	if c == nil {
		return
	}

	viewer := "guest"
	if authenticated {
		viewer = "user"
	}

	c.swipes.WithLabelValues(direction, viewer, outcome).Inc()
}

// Undo records an applied undo.
func (c *Collectors) Undo() {
	if c == nil {
		return
	}

	c.undos.Inc()
}

// SyncJob records a sync attempt outcome.
func (c *Collectors) SyncJob(kind, outcome string) {
	if c == nil {
		return
	}

	c.syncJobs.WithLabelValues(kind, outcome).Inc()
}

// SyncQueueDepth sets the current queue depth.
func (c *Collectors) SyncQueueDepth(n int) {
	if c == nil {
		return
	}

	c.syncQueueDepth.Set(float64(n))
}

// ActiveSessions sets the number of live sessions.
func (c *Collectors) ActiveSessions(n int) {
	if c == nil {
		return
	}

	c.activeSessions.Set(float64(n))
}

// FeedLoad records where a quote list came from.
func (c *Collectors) FeedLoad(source string) {
	if c == nil {
		return
	}

	c.feedLoads.WithLabelValues(source).Inc()
}
