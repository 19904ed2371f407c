// Package service internal/application/service/conversion_service.go
package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/damon-houk/currency-rate-widget/internal/domain/entity"
	domainservice "github.com/damon-houk/currency-rate-widget/internal/domain/service"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/logger"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/metrics"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/middleware"
)

// ConversionResult represents an amount converted with the current rates
type ConversionResult struct {
	Amount          float64           `json:"amount"`
	From            string            `json:"from"`
	To              string            `json:"to"`
	ConvertedAmount float64           `json:"converted_amount"`
	Rate            float64           `json:"rate"`
	BaseCode        string            `json:"base_code"`
	LastUpdated     time.Time         `json:"last_updated"`
	Source          entity.RateSource `json:"source"`
}

// ConversionService converts amounts using whatever rates the rate source currently serves
type ConversionService struct {
	rates   domainservice.RatesGetter
	metrics *metrics.RateMetrics
	logger  logger.Logger
}

// NewConversionService creates a new conversion service
func NewConversionService(rates domainservice.RatesGetter, m *metrics.RateMetrics, log logger.Logger) *ConversionService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionService{
		rates:   rates,
		metrics: m,
		logger:  log,
	}
}

// NormalizeCurrencyCode trims and upper-cases a currency code
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Convert converts amount from one currency to another
func (s *ConversionService) Convert(ctx context.Context, amount float64, from, to string) (*ConversionResult, error) {
	result, err := s.convert(ctx, amount, NormalizeCurrencyCode(from), NormalizeCurrencyCode(to))
	s.metrics.RecordConversion(err)
	return result, err
}

func (s *ConversionService) convert(ctx context.Context, amount float64, from, to string) (*ConversionResult, error) {
	requestID := middleware.GetRequestID(ctx)

	s.logger.Info("Converting amount", map[string]interface{}{
		"request_id": requestID,
		"amount":     amount,
		"from":       from,
		"to":         to,
	})

	if from == "" || to == "" {
		return nil, fmt.Errorf("%w: from and to are required", ErrInvalidCurrencyCode)
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	rates := s.rates.GetRates(ctx)

	converted, err := Convert(amount, from, to, rates)
	if err != nil {
		s.logger.Warn("Conversion failed", map[string]interface{}{
			"request_id": requestID,
			"from":       from,
			"to":         to,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to convert %s to %s: %w", from, to, err)
	}

	// Both codes are known at this point, so the unit rate cannot fail
	rate, _ := Convert(1, from, to, rates)

	s.logger.Info("Conversion completed", map[string]interface{}{
		"request_id":       requestID,
		"from":             from,
		"to":               to,
		"original_amount":  amount,
		"exchange_rate":    rate,
		"converted_amount": converted,
		"source":           string(rates.Source),
	})

	return &ConversionResult{
		Amount:          amount,
		From:            from,
		To:              to,
		ConvertedAmount: converted,
		Rate:            rate,
		BaseCode:        rates.BaseCode,
		LastUpdated:     rates.LastUpdated,
		Source:          rates.Source,
	}, nil
}
