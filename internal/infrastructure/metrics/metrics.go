package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RateMetrics holds the collectors for rate retrieval, caching and conversion.
// A nil *RateMetrics is valid and records nothing.
type RateMetrics struct {
	// Provider fetches, labelled by the source that was served (live/fallback)
	FetchTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec

	// Cache lookups, labelled hit/miss
	CacheRequestsTotal *prometheus.CounterVec

	// Conversions, labelled ok/error
	ConversionsTotal *prometheus.CounterVec

	// Provider-reported update time of the most recently fetched set
	LastUpdatedTimestamp prometheus.Gauge
}

// NewRateMetrics creates the collectors and registers them with reg
func NewRateMetrics(reg prometheus.Registerer) *RateMetrics {
	factory := promauto.With(reg)

	return &RateMetrics{
		FetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_fetch_total",
				Help: "Number of rate fetches by the source that was served",
			},
			[]string{"source"},
		),

		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rate_fetch_duration_seconds",
				Help:    "Time spent fetching rates from the provider",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms .. ~20s
			},
			[]string{"source"},
		),

		CacheRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_cache_requests_total",
				Help: "Rate cache lookups by result",
			},
			[]string{"result"},
		),

		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_conversions_total",
				Help: "Currency conversions by outcome",
			},
			[]string{"status"},
		),

		LastUpdatedTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rate_last_updated_timestamp_seconds",
				Help: "Provider-reported update time of the latest fetched rate set",
			},
		),
	}
}

// RecordFetch records one fetch, the source served and when the provider last updated
func (m *RateMetrics) RecordFetch(source string, duration time.Duration, lastUpdated time.Time) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(source).Inc()
	m.FetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	m.LastUpdatedTimestamp.Set(float64(lastUpdated.Unix()))
}

// RecordCacheHit records a lookup served from the cache
func (m *RateMetrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheRequestsTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss records a lookup that required a fetch
func (m *RateMetrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheRequestsTotal.WithLabelValues("miss").Inc()
}

// RecordConversion records a conversion outcome
func (m *RateMetrics) RecordConversion(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ConversionsTotal.WithLabelValues(status).Inc()
}
