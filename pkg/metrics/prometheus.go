package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	fetches      *prometheus.CounterVec
	fetchErrors  *prometheus.CounterVec
	ruleTriggers *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundflow_cache_hits_total",
				Help: "Total cache hits by cache name",
			},
			[]string{"cache"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundflow_cache_misses_total",
				Help: "Total cache misses by cache name",
			},
			[]string{"cache"},
		),
		fetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundflow_fetches_total",
				Help: "Total upstream fetches by kind",
			},
			[]string{"kind"},
		),
		fetchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundflow_fetch_errors_total",
				Help: "Total upstream fetch failures by kind",
			},
			[]string{"kind"},
		),
		ruleTriggers: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundflow_rule_triggers_total",
				Help: "Total signal rule triggers by rule id",
			},
			[]string{"rule"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fundflow_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCacheHit records a hit for the named cache.
func (r *Recorder) RecordCacheHit(cache string) {
	r.cacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a miss for the named cache.
func (r *Recorder) RecordCacheMiss(cache string) {
	r.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordFetch records an upstream fetch attempt.
func (r *Recorder) RecordFetch(kind string) {
	r.fetches.WithLabelValues(kind).Inc()
}

// RecordFetchError records an upstream fetch failure.
func (r *Recorder) RecordFetchError(kind string) {
	r.fetchErrors.WithLabelValues(kind).Inc()
}

// RecordRuleTrigger records a triggered rule by id.
func (r *Recorder) RecordRuleTrigger(rule string) {
	r.ruleTriggers.WithLabelValues(rule).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
