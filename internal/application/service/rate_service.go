package service

import (
	"context"

	"github.com/damon-houk/currency-rate-widget/internal/domain/entity"
	"github.com/damon-houk/currency-rate-widget/internal/domain/repository"
	domainservice "github.com/damon-houk/currency-rate-widget/internal/domain/service"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/logger"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/metrics"
	"golang.org/x/sync/singleflight"
)

const latestRatesKey = "latest"

// Verify that RateService implements the domainservice.RatesGetter interface
var _ domainservice.RatesGetter = (*RateService)(nil)

// RateService serves the current rate set from the store and refreshes it
// through the fetcher once it has expired.
type RateService struct {
	fetcher  domainservice.RateFetcher
	store    repository.RateStore
	inflight singleflight.Group
	metrics  *metrics.RateMetrics
	logger   logger.Logger
}

// NewRateService creates a new rate service
func NewRateService(fetcher domainservice.RateFetcher, store repository.RateStore, m *metrics.RateMetrics, log logger.Logger) *RateService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RateService{
		fetcher: fetcher,
		store:   store,
		metrics: m,
		logger:  log,
	}
}

// GetRates returns the stored rate set while it is fresh, otherwise fetches,
// stores and returns a new one. Concurrent misses share a single fetch, which
// is not cancelled when the caller that started it goes away.
func (s *RateService) GetRates(ctx context.Context) *entity.ExchangeRateSet {
	if cached := s.store.Get(); cached != nil {
		s.metrics.RecordCacheHit()
		return cached
	}

	s.metrics.RecordCacheMiss()

	v, _, shared := s.inflight.Do(latestRatesKey, func() (interface{}, error) {
		// another caller may have stored a set while we waited for the key
		if cached := s.store.Get(); cached != nil {
			return cached, nil
		}

		rates := s.fetcher.FetchRates(context.WithoutCancel(ctx))
		s.store.Put(rates)

		s.logger.Debug("Stored exchange rates", map[string]interface{}{
			"base_code": rates.BaseCode,
			"source":    string(rates.Source),
		})

		return rates, nil
	})

	if shared {
		s.logger.Debug("Shared in-flight exchange rate fetch", nil)
	}

	return v.(*entity.ExchangeRateSet)
}
