package entity

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// BaseCurrency is the currency every rate in this system is quoted against
const BaseCurrency = "USD"

// ErrInvalidRateSet is returned when a rate set violates its invariants
var ErrInvalidRateSet = errors.New("invalid exchange rate set")

// RateSource tells whether a rate set came from the provider or from the built-in fallback
type RateSource string

const (
	// SourceLive marks rates parsed from a provider response
	SourceLive RateSource = "live"
	// SourceFallback marks the hardcoded rates used when the provider is unavailable
	SourceFallback RateSource = "fallback"
)

// fallbackRates are served whenever live retrieval fails
var fallbackRates = map[string]float64{
	"USD": 1,
	"EUR": 0.92,
	"GBP": 0.79,
}

// ExchangeRateSet holds all rates relative to a single base currency.
// A set is never modified after construction.
type ExchangeRateSet struct {
	BaseCode    string             `json:"base_code"`
	Rates       map[string]float64 `json:"rates"`
	LastUpdated time.Time          `json:"last_updated"`
	Source      RateSource         `json:"source"`
}

// NewExchangeRateSet builds a validated rate set. The rates map is copied and the
// base entry is added when the provider left it out.
func NewExchangeRateSet(baseCode string, rates map[string]float64, lastUpdated time.Time, source RateSource) (*ExchangeRateSet, error) {
	copied := make(map[string]float64, len(rates)+1)
	for code, rate := range rates {
		copied[code] = rate
	}

	if _, ok := copied[baseCode]; !ok && baseCode != "" {
		copied[baseCode] = 1
	}

	set := &ExchangeRateSet{
		BaseCode:    baseCode,
		Rates:       copied,
		LastUpdated: lastUpdated,
		Source:      source,
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}

	return set, nil
}

// FallbackRates returns the hardcoded USD/EUR/GBP set stamped with now in UTC
func FallbackRates(now time.Time) *ExchangeRateSet {
	rates := make(map[string]float64, len(fallbackRates))
	for code, rate := range fallbackRates {
		rates[code] = rate
	}

	return &ExchangeRateSet{
		BaseCode:    BaseCurrency,
		Rates:       rates,
		LastUpdated: now.UTC(),
		Source:      SourceFallback,
	}
}

// Validate checks the rate set invariants
func (s *ExchangeRateSet) Validate() error {
	if s.BaseCode == "" {
		return fmt.Errorf("%w: base code is empty", ErrInvalidRateSet)
	}

	if base, ok := s.Rates[s.BaseCode]; !ok || base != 1 {
		return fmt.Errorf("%w: rate for base %s must be 1", ErrInvalidRateSet, s.BaseCode)
	}

	for code, rate := range s.Rates {
		if code == "" {
			return fmt.Errorf("%w: empty currency code", ErrInvalidRateSet)
		}
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
			return fmt.Errorf("%w: rate for %s must be positive, got %v", ErrInvalidRateSet, code, rate)
		}
	}

	return nil
}

// Rate looks up the rate for a currency code
func (s *ExchangeRateSet) Rate(code string) (float64, bool) {
	if code == s.BaseCode {
		return 1, true
	}
	rate, ok := s.Rates[code]
	return rate, ok
}

// Codes returns the currency codes in the set, sorted
func (s *ExchangeRateSet) Codes() []string {
	codes := make([]string, 0, len(s.Rates))
	for code := range s.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// IsFallback reports whether the set is the built-in fallback
func (s *ExchangeRateSet) IsFallback() bool {
	return s.Source == SourceFallback
}
