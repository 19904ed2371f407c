package service

import "errors"

var (
	// ErrUnknownCurrency is returned when a currency code is not in the rate set
	ErrUnknownCurrency = errors.New("unknown currency code")
	// ErrNoRates is returned when a conversion is attempted without a rate set
	ErrNoRates = errors.New("no exchange rates available")
	// ErrInvalidCurrencyCode is returned for empty currency codes
	ErrInvalidCurrencyCode = errors.New("invalid currency code")
	// ErrInvalidAmount is returned for NaN or infinite amounts
	ErrInvalidAmount = errors.New("invalid amount")

	errNoRatesReturned = errors.New("provider returned no rates")
)
