// Package widget builds the display model for the exchange rate widget
package widget

import (
	"time"

	"github.com/damon-houk/currency-rate-widget/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DefaultCurrencies are shown when no currency list is configured
var DefaultCurrencies = []string{"USD", "EUR", "GBP"}

const (
	rateDecimals      = 4
	lastUpdatedLayout = "3:04:05 PM"
)

// Trend describes how a rate moved since the previous refresh
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendSame Trend = "same"
)

// Quote is one currency as shown in the widget
type Quote struct {
	Code    string  `json:"code"`
	Rate    float64 `json:"rate"`
	Display string  `json:"display"`
	Trend   Trend   `json:"trend"`
}

// Snapshot is everything the widget renders after a refresh
type Snapshot struct {
	BaseCode     string            `json:"base_code"`
	Quotes       []Quote           `json:"quotes"`
	LastUpdated  time.Time         `json:"last_updated"`
	UpdatedLabel string            `json:"updated_label"`
	Source       entity.RateSource `json:"source"`
	Fallback     bool              `json:"fallback"`
	RefreshedAt  time.Time         `json:"refreshed_at"`
}

// FormatRate renders a rate with four fixed decimals
func FormatRate(rate float64) string {
	return decimal.NewFromFloat(rate).StringFixed(rateDecimals)
}

// FormatLastUpdated renders a timestamp on a 12-hour clock
func FormatLastUpdated(t time.Time) string {
	return t.Format(lastUpdatedLayout)
}

// CompareRates reports the direction a rate moved. Without a usable previous
// value the rate is reported unchanged.
func CompareRates(current, previous float64, hasPrevious bool) Trend {
	switch {
	case !hasPrevious || previous == 0:
		return TrendSame
	case current > previous:
		return TrendUp
	case current < previous:
		return TrendDown
	default:
		return TrendSame
	}
}

// BuildSnapshot turns a rate set into widget quotes for the given currencies.
// previous may be nil. Currencies missing from current are left out.
func BuildSnapshot(current, previous *entity.ExchangeRateSet, currencies []string) Snapshot {
	if len(currencies) == 0 {
		currencies = DefaultCurrencies
	}

	quotes := make([]Quote, 0, len(currencies))
	for _, code := range currencies {
		rate, ok := current.Rate(code)
		if !ok {
			continue
		}

		var prev float64
		var hasPrev bool
		if previous != nil {
			prev, hasPrev = previous.Rate(code)
		}

		quotes = append(quotes, Quote{
			Code:    code,
			Rate:    rate,
			Display: FormatRate(rate),
			Trend:   CompareRates(rate, prev, hasPrev),
		})
	}

	return Snapshot{
		BaseCode:     current.BaseCode,
		Quotes:       quotes,
		LastUpdated:  current.LastUpdated,
		UpdatedLabel: FormatLastUpdated(current.LastUpdated),
		Source:       current.Source,
		Fallback:     current.IsFallback(),
	}
}
