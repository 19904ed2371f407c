package service

import (
	"context"

	"github.com/damon-houk/currency-rate-widget/internal/domain/entity"
)

// RateProvider retrieves the latest rates from an external source
type RateProvider interface {
	// FetchLatestRates performs one retrieval and reports any failure
	FetchLatestRates(ctx context.Context) (*entity.ExchangeRateSet, error)
}

// RateFetcher always produces a usable rate set, substituting fallback rates on failure
type RateFetcher interface {
	FetchRates(ctx context.Context) *entity.ExchangeRateSet
}

// RatesGetter is implemented by anything that can serve the current rate set
type RatesGetter interface {
	GetRates(ctx context.Context) *entity.ExchangeRateSet
}
