// Package repository internal/domain/repository/exchange_rate_repository.go
package repository

import (
	"github.com/damon-houk/currency-rate-widget/internal/domain/entity"
)

// RateStore holds at most one rate set for a limited time
type RateStore interface {
	// Get returns the stored set, or nil when nothing fresh is stored
	Get() *entity.ExchangeRateSet

	// Put replaces the stored set and restarts its freshness window
	Put(rates *entity.ExchangeRateSet)
}
