package service

import (
	"fmt"
	"math"

	"github.com/damon-houk/currency-rate-widget/internal/domain/entity"
)

// Convert converts amount between two currencies by crossing through the base
// currency of rates. Identical codes return amount untouched.
func Convert(amount float64, from, to string, rates *entity.ExchangeRateSet) (float64, error) {
	if from == to {
		return amount, nil
	}

	if rates == nil {
		return 0, ErrNoRates
	}

	amountInBase := amount
	if from != rates.BaseCode {
		fromRate, err := lookupRate(rates, from)
		if err != nil {
			return 0, err
		}
		amountInBase = amount / fromRate
	}

	if to == rates.BaseCode {
		return amountInBase, nil
	}

	toRate, err := lookupRate(rates, to)
	if err != nil {
		return 0, err
	}

	return amountInBase * toRate, nil
}

// lookupRate only hands out positive finite rates; anything else cannot be
// converted through
func lookupRate(rates *entity.ExchangeRateSet, code string) (float64, error) {
	rate, ok := rates.Rates[code]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}

	if !(rate > 0) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("%w: %s has no usable rate (%v)", ErrUnknownCurrency, code, rate)
	}

	return rate, nil
}
