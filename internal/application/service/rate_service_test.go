package service

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/damon-houk/currency-rate-widget/internal/domain/entity"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/cache"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/logger"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fetcherStub counts calls and delegates to fetchFn
type fetcherStub struct {
	calls   atomic.Int32
	fetchFn func(ctx context.Context) *entity.ExchangeRateSet
}

func (f *fetcherStub) FetchRates(ctx context.Context) *entity.ExchangeRateSet {
	f.calls.Add(1)
	return f.fetchFn(ctx)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newRateServiceUnderTest(fetcher *fetcherStub) (*RateService, *testClock, *metrics.RateMetrics) {
	clock := &testClock{now: time.Date(2025, 5, 26, 12, 0, 0, 0, time.UTC)}

	store := cache.NewExchangeRateCache()
	store.SetClock(clock.Now)

	var buf bytes.Buffer
	m := metrics.NewRateMetrics(prometheus.NewRegistry())

	return NewRateService(fetcher, store, m, logger.NewJSONLogger(&buf, logger.DebugLevel)), clock, m
}

func TestRateServiceGetRates(t *testing.T) {
	ctx := context.Background()

	t.Run("Cold start returns the fetched set", func(t *testing.T) {
		fetched := testRates(t)
		fetcher := &fetcherStub{fetchFn: func(context.Context) *entity.ExchangeRateSet { return fetched }}
		svc, _, _ := newRateServiceUnderTest(fetcher)

		rates := svc.GetRates(ctx)

		assert.Equal(t, int32(1), fetcher.calls.Load())
		assert.Equal(t, fetched.BaseCode, rates.BaseCode)
		assert.Equal(t, fetched.Rates, rates.Rates)
	})

	t.Run("Calls within the window share one fetch", func(t *testing.T) {
		fetcher := &fetcherStub{fetchFn: func(context.Context) *entity.ExchangeRateSet { return testRates(t) }}
		svc, clock, m := newRateServiceUnderTest(fetcher)

		first := svc.GetRates(ctx)
		clock.Advance(59 * time.Minute)
		second := svc.GetRates(ctx)

		assert.Equal(t, int32(1), fetcher.calls.Load())
		assert.Same(t, first, second)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("miss")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("hit")))
	})

	t.Run("Call after the window triggers a second fetch", func(t *testing.T) {
		fetcher := &fetcherStub{fetchFn: func(context.Context) *entity.ExchangeRateSet { return testRates(t) }}
		svc, clock, _ := newRateServiceUnderTest(fetcher)

		first := svc.GetRates(ctx)
		clock.Advance(time.Hour)
		second := svc.GetRates(ctx)

		assert.Equal(t, int32(2), fetcher.calls.Load())
		assert.NotSame(t, first, second)
	})

	t.Run("Fallback rates are cached like live rates", func(t *testing.T) {
		fetcher := &fetcherStub{fetchFn: func(context.Context) *entity.ExchangeRateSet {
			return entity.FallbackRates(time.Now())
		}}
		svc, clock, _ := newRateServiceUnderTest(fetcher)

		assert.True(t, svc.GetRates(ctx).IsFallback())
		clock.Advance(30 * time.Minute)
		assert.True(t, svc.GetRates(ctx).IsFallback())
		assert.Equal(t, int32(1), fetcher.calls.Load())
	})

	t.Run("Concurrent misses are coalesced", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		fetched := testRates(t)

		fetcher := &fetcherStub{fetchFn: func(context.Context) *entity.ExchangeRateSet {
			close(started)
			<-release
			return fetched
		}}
		svc, _, _ := newRateServiceUnderTest(fetcher)

		const callers = 20
		results := make([]*entity.ExchangeRateSet, callers)

		var wg sync.WaitGroup
		wg.Add(callers)
		for i := 0; i < callers; i++ {
			go func(i int) {
				defer wg.Done()
				results[i] = svc.GetRates(ctx)
			}(i)
		}

		<-started
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), fetcher.calls.Load())
		for _, rates := range results {
			assert.Same(t, fetched, rates)
		}
	})

	t.Run("Fetch survives caller cancellation", func(t *testing.T) {
		var fetchCtxErr error
		fetcher := &fetcherStub{fetchFn: func(ctx context.Context) *entity.ExchangeRateSet {
			fetchCtxErr = ctx.Err()
			return testRates(t)
		}}
		svc, _, _ := newRateServiceUnderTest(fetcher)

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		rates := svc.GetRates(cancelled)
		require.NotNil(t, rates)
		assert.NoError(t, fetchCtxErr)
		assert.False(t, rates.IsFallback())
	})
}
