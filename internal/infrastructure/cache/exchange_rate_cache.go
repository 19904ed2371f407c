package cache

import (
	"sync"
	"time"

	"github.com/damon-houk/currency-rate-widget/internal/domain/entity"
	"github.com/damon-houk/currency-rate-widget/internal/domain/repository"
)

// DefaultExpiration is how long a stored rate set stays fresh
const DefaultExpiration = time.Hour

// Verify that ExchangeRateCache implements the repository.RateStore interface
var _ repository.RateStore = (*ExchangeRateCache)(nil)

// CacheEntry represents the cached rate set and when it was stored
type CacheEntry struct {
	Rates     *entity.ExchangeRateSet
	Timestamp time.Time
}

// ExchangeRateCache is a thread-safe, single-entry, in-memory store for the
// latest rate set. The entry is only ever replaced as a whole.
type ExchangeRateCache struct {
	entry      *CacheEntry
	expiration time.Duration
	now        func() time.Time
	mutex      sync.RWMutex
}

// NewExchangeRateCache creates an empty cache with DefaultExpiration
func NewExchangeRateCache() *ExchangeRateCache {
	return &ExchangeRateCache{
		expiration: DefaultExpiration,
		now:        time.Now,
	}
}

// Get returns the stored rate set if one exists and is younger than the expiration
func (c *ExchangeRateCache) Get() *entity.ExchangeRateSet {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if !c.freshLocked() {
		return nil
	}

	return c.entry.Rates
}

// Put stores a rate set, stamped with the current time
func (c *ExchangeRateCache) Put(rates *entity.ExchangeRateSet) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entry = &CacheEntry{
		Rates:     rates,
		Timestamp: c.now(),
	}
}

// Age reports how long ago the current entry was stored
func (c *ExchangeRateCache) Age() (time.Duration, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.entry == nil {
		return 0, false
	}

	return c.now().Sub(c.entry.Timestamp), true
}

// Clear drops the stored entry
func (c *ExchangeRateCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entry = nil
}

// SetExpiration sets the cache expiration duration
func (c *ExchangeRateCache) SetExpiration(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.expiration = duration
}

// SetClock replaces the time source, mainly for tests
func (c *ExchangeRateCache) SetClock(now func() time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.now = now
}

// Size returns the number of stored entries, zero or one
func (c *ExchangeRateCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.entry == nil {
		return 0
	}
	return 1
}

// CleanExpired drops the entry if it has expired and reports how many were removed
func (c *ExchangeRateCache) CleanExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.entry == nil || c.freshLocked() {
		return 0
	}

	c.entry = nil
	return 1
}

// freshLocked must be called with the mutex held
func (c *ExchangeRateCache) freshLocked() bool {
	return c.entry != nil && c.now().Sub(c.entry.Timestamp) < c.expiration
}
