// Package prices holds the process-lifetime live price cache.
package prices

import (
	"math"
	"sort"
	"sync"
	"time"

	"portfolio-dashboard/internal/models"
)

// DefaultUSDINR is used when no live exchange rate has been fetched.
const DefaultUSDINR = 84.0

// Source identifies which feed produced a snapshot.
type Source string

const (
	SourceAMFI  Source = "AMFI"
	SourceYahoo Source = "YAHOO"
)

// Snapshot is the last fetched price for one lookup key.
type Snapshot struct {
	Price     float64
	Change    float64
	ChangePct float64
	HasChange bool // only price feed entries carry change vs previous close
	FetchedAt time.Time
	Source    Source
}

// Reader is the read side of the cache used by valuation.
type Reader interface {
	Get(key string) (Snapshot, bool)
	USDINR() float64
}

// Cache maps lookup keys (scheme codes, ticker symbols, USDINR=X) to their
// latest snapshot. Writers may call Set at any time, including while a
// table is being computed.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Snapshot
	fxRate  float64
}

// NewCache creates an empty cache. An empty cache means no live data yet.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]Snapshot),
		fxRate:  DefaultUSDINR,
	}
}

// WithFallbackRate overrides the USDINR fallback.
func (c *Cache) WithFallbackRate(rate float64) *Cache {
	if rate > 0 && !math.IsInf(rate, 0) {
		c.mu.Lock()
		c.fxRate = rate
		c.mu.Unlock()
	}
	return c
}

// Get returns the snapshot for key. Empty keys are never present.
func (c *Cache) Get(key string) (Snapshot, bool) {
	if key == "" {
		return Snapshot{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[key]
	return s, ok
}

// Set stores a snapshot, replacing any previous one for key. Snapshots with
// a non-finite price are ignored so a bad feed row cannot poison valuation.
func (c *Cache) Set(key string, s Snapshot) {
	if key == "" || math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
		return
	}
	if s.FetchedAt.IsZero() {
		s.FetchedAt = time.Now()
	}
	c.mu.Lock()
	c.entries[key] = s
	c.mu.Unlock()
}

// USDINR returns the cached USD to INR rate or the fallback rate.
func (c *Cache) USDINR() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.entries[models.USDINRKey]; ok && s.Price > 0 {
		return s.Price
	}
	return c.fxRate
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the cached keys in sorted order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Snapshot)
	c.mu.Unlock()
}
