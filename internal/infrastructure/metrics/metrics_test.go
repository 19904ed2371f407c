package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRateMetrics(t *testing.T) {
	m := NewRateMetrics(prometheus.NewRegistry())
	updated := time.Date(2025, 5, 26, 0, 0, 1, 0, time.UTC)

	m.RecordFetch("live", 120*time.Millisecond, updated)
	m.RecordFetch("fallback", 10*time.Second, updated)
	m.RecordFetch("live", 80*time.Millisecond, updated)
	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordConversion(nil)
	m.RecordConversion(errors.New("unknown currency code"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("live")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("fallback")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues("error")))
	assert.Equal(t, float64(updated.Unix()), testutil.ToFloat64(m.LastUpdatedTimestamp))
}

func TestNilRateMetrics(t *testing.T) {
	var m *RateMetrics

	assert.NotPanics(t, func() {
		m.RecordFetch("live", time.Second, time.Now())
		m.RecordCacheHit()
		m.RecordCacheMiss()
		m.RecordConversion(nil)
	})
}
