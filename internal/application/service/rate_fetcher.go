// Package service internal/application/service/rate_fetcher.go
package service

import (
	"context"
	"time"

	"github.com/damon-houk/currency-rate-widget/internal/domain/entity"
	domainservice "github.com/damon-houk/currency-rate-widget/internal/domain/service"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/logger"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/metrics"
)

// Verify that FallbackRateFetcher implements the domainservice.RateFetcher interface
var _ domainservice.RateFetcher = (*FallbackRateFetcher)(nil)

// FallbackRateFetcher wraps a provider and never fails: any provider error is
// logged and replaced with the built-in fallback rates.
type FallbackRateFetcher struct {
	provider domainservice.RateProvider
	metrics  *metrics.RateMetrics
	logger   logger.Logger
	now      func() time.Time
}

// NewFallbackRateFetcher creates a new fetcher around provider
func NewFallbackRateFetcher(provider domainservice.RateProvider, m *metrics.RateMetrics, log logger.Logger) *FallbackRateFetcher {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &FallbackRateFetcher{
		provider: provider,
		metrics:  m,
		logger:   log,
		now:      time.Now,
	}
}

// FetchRates retrieves the latest rates, substituting fallback rates on any failure
func (f *FallbackRateFetcher) FetchRates(ctx context.Context) *entity.ExchangeRateSet {
	start := f.now()

	rates, err := f.provider.FetchLatestRates(ctx)
	if err == nil && rates == nil {
		err = errNoRatesReturned
	}

	if err != nil {
		fallback := entity.FallbackRates(f.now())

		f.logger.Error("Error fetching exchange rates, serving fallback rates", map[string]interface{}{
			"error":     err.Error(),
			"base_code": fallback.BaseCode,
		})
		f.metrics.RecordFetch(string(fallback.Source), f.now().Sub(start), fallback.LastUpdated)

		return fallback
	}

	f.logger.Info("Fetched exchange rates", map[string]interface{}{
		"base_code":    rates.BaseCode,
		"currencies":   len(rates.Rates),
		"last_updated": rates.LastUpdated.Format(time.RFC3339),
	})
	f.metrics.RecordFetch(string(rates.Source), f.now().Sub(start), rates.LastUpdated)

	return rates
}
