package internal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/damon-houk/currency-rate-widget/internal/application/service"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/api"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/cache"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/logger"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const latestRatesBody = `{
	"result": "success",
	"base_code": "USD",
	"time_last_update_unix": 1748217601,
	"time_last_update_utc": "Mon, 26 May 2025 00:00:01 +0000",
	"rates": {"USD": 1, "EUR": 0.92, "GBP": 0.79, "CAD": 1.37, "JPY": 156.8}
}`

func TestPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping performance test in short mode")
	}

	// Provider stub with a little latency so concurrent misses overlap
	var providerHits atomic.Int32
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		providerHits.Add(1)
		time.Sleep(20 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, latestRatesBody)
	}))
	defer provider.Close()

	log := logger.NewJSONLogger(io.Discard, logger.ErrorLevel)
	m := metrics.NewRateMetrics(prometheus.NewRegistry())

	client := api.NewExchangeRateAPIClient(provider.URL+"/v6/latest/USD", nil, log)
	fetcher := service.NewFallbackRateFetcher(client, m, log)
	rateService := service.NewRateService(fetcher, cache.NewExchangeRateCache(), m, log)
	conversionService := service.NewConversionService(rateService, m, log)

	numRequests := 10000
	concurrency := 50

	t.Run("Rate Retrieval", func(t *testing.T) {
		startTime := time.Now()

		wg := sync.WaitGroup{}
		wg.Add(concurrency)

		perWorker := numRequests / concurrency

		for i := 0; i < concurrency; i++ {
			go func() {
				defer wg.Done()

				ctx := context.Background()
				for j := 0; j < perWorker; j++ {
					if rates := rateService.GetRates(ctx); rates.IsFallback() {
						t.Errorf("unexpected fallback rates")
						return
					}
				}
			}()
		}

		wg.Wait()
		duration := time.Since(startTime)

		// Every caller shares the single provider request
		assert.Equal(t, int32(1), providerHits.Load())

		throughput := float64(numRequests) / duration.Seconds()
		t.Logf("Rate retrieval: %d lookups in %v (%.2f req/sec)", numRequests, duration, throughput)
	})

	t.Run("Currency Conversion", func(t *testing.T) {
		startTime := time.Now()

		wg := sync.WaitGroup{}
		wg.Add(concurrency)

		perWorker := numRequests / concurrency
		currencies := []string{"USD", "EUR", "GBP", "CAD", "JPY"}

		for i := 0; i < concurrency; i++ {
			go func(workerID int) {
				defer wg.Done()

				ctx := context.Background()
				for j := 0; j < perWorker; j++ {
					from := currencies[(workerID+j)%len(currencies)]
					to := currencies[j%len(currencies)]

					_, err := conversionService.Convert(ctx, 100, from, to)
					if err != nil {
						t.Errorf("Error converting %s to %s: %v", from, to, err)
						return
					}
				}
			}(i)
		}

		wg.Wait()
		duration := time.Since(startTime)

		require.Equal(t, int32(1), providerHits.Load())

		throughput := float64(numRequests) / duration.Seconds()
		t.Logf("Currency conversion: %d conversions in %v (%.2f conv/sec)", numRequests, duration, throughput)
	})
}
