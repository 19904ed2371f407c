package entity

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExchangeRateSet(t *testing.T) {
	updated := time.Date(2025, 5, 26, 0, 0, 1, 0, time.UTC)

	t.Run("Valid set", func(t *testing.T) {
		rates := map[string]float64{"USD": 1, "EUR": 0.92, "GBP": 0.79}

		set, err := NewExchangeRateSet("USD", rates, updated, SourceLive)
		require.NoError(t, err)
		assert.Equal(t, "USD", set.BaseCode)
		assert.Equal(t, rates, set.Rates)
		assert.Equal(t, updated, set.LastUpdated)
		assert.False(t, set.IsFallback())

		// The set owns its own copy of the map
		rates["EUR"] = 5
		assert.Equal(t, 0.92, set.Rates["EUR"])
	})

	t.Run("Missing base entry is added", func(t *testing.T) {
		set, err := NewExchangeRateSet("USD", map[string]float64{"EUR": 0.92}, updated, SourceLive)
		require.NoError(t, err)
		assert.Equal(t, 1.0, set.Rates["USD"])
	})

	t.Run("Invalid sets", func(t *testing.T) {
		cases := map[string]struct {
			base  string
			rates map[string]float64
		}{
			"empty base":       {"", map[string]float64{"EUR": 0.92}},
			"base not one":     {"USD", map[string]float64{"USD": 1.1, "EUR": 0.92}},
			"zero rate":        {"USD", map[string]float64{"EUR": 0}},
			"negative rate":    {"USD", map[string]float64{"EUR": -0.92}},
			"NaN rate":         {"USD", map[string]float64{"EUR": math.NaN()}},
			"infinite rate":    {"USD", map[string]float64{"EUR": math.Inf(1)}},
			"empty code entry": {"USD", map[string]float64{"": 0.5}},
		}

		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				set, err := NewExchangeRateSet(tc.base, tc.rates, updated, SourceLive)
				assert.Nil(t, set)
				assert.ErrorIs(t, err, ErrInvalidRateSet)
			})
		}
	})
}

func TestFallbackRates(t *testing.T) {
	now := time.Date(2025, 5, 26, 12, 0, 0, 0, time.UTC)
	set := FallbackRates(now)

	assert.Equal(t, "USD", set.BaseCode)
	assert.Equal(t, map[string]float64{"USD": 1, "EUR": 0.92, "GBP": 0.79}, set.Rates)
	assert.Equal(t, now, set.LastUpdated)
	assert.True(t, set.IsFallback())
	assert.NoError(t, set.Validate())

	// Each call hands out an independent map
	set.Rates["EUR"] = 2
	assert.Equal(t, 0.92, FallbackRates(now).Rates["EUR"])
}

func TestFallbackRatesAreStampedInUTC(t *testing.T) {
	berlin := time.FixedZone("CEST", 2*60*60)
	now := time.Date(2025, 5, 26, 14, 0, 0, 0, berlin)

	set := FallbackRates(now)

	assert.Equal(t, time.UTC, set.LastUpdated.Location())
	assert.True(t, now.Equal(set.LastUpdated))
	assert.Equal(t, 12, set.LastUpdated.Hour())
}

func TestExchangeRateSetLookups(t *testing.T) {
	set := FallbackRates(time.Now())

	rate, ok := set.Rate("GBP")
	assert.True(t, ok)
	assert.Equal(t, 0.79, rate)

	rate, ok = set.Rate("USD")
	assert.True(t, ok)
	assert.Equal(t, 1.0, rate)

	_, ok = set.Rate("JPY")
	assert.False(t, ok)

	assert.Equal(t, []string{"EUR", "GBP", "USD"}, set.Codes())
}
