// Package diagcache memoizes diagnosis results for identical metric
// snapshots inside a validity window, so repeated requests do not burn AI
// quota on inputs that have not changed.
package diagcache

import (
	"sync"
	"time"

	"github.com/terrapulse/vitals-cli/internal/model"
)

// DefaultValidity is how long a cached diagnosis stays servable.
const DefaultValidity = time.Hour

type entry struct {
	result   model.DiagnosisResult
	cachedAt time.Time
}

// Cache is a process-wide fingerprint-keyed store with lazy expiry. Like
// the quota governor it does not survive restarts, by design.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	validity time.Duration

	nowFunc func() time.Time
}

// New creates a cache. A non-positive validity selects the 1h default.
func New(validity time.Duration) *Cache {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Cache{
		entries:  make(map[string]entry),
		validity: validity,
		nowFunc:  time.Now,
	}
}

// WithNow fixes the cache's clock for tests.
func (c *Cache) WithNow(now func() time.Time) *Cache {
	c.nowFunc = now
	return c
}

// Lookup returns the cached result for a fingerprint if it is still inside
// the validity window. Stale entries are deleted on the way out.
func (c *Cache) Lookup(fingerprint string) (model.DiagnosisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fingerprint]
	if !ok {
		return model.DiagnosisResult{}, false
	}
	if c.nowFunc().Sub(e.cachedAt) >= c.validity {
		delete(c.entries, fingerprint)
		return model.DiagnosisResult{}, false
	}
	return e.result, true
}

// Store unconditionally overwrites the entry for a fingerprint.
func (c *Cache) Store(fingerprint string, result model.DiagnosisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = entry{result: result, cachedAt: c.nowFunc()}
}

// Len reports the number of entries, including any not yet lazily expired.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Prune drops every stale entry. Purely memory hygiene; correctness never
// depends on it being called.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFunc()
	removed := 0
	for fp, e := range c.entries {
		if now.Sub(e.cachedAt) >= c.validity {
			delete(c.entries, fp)
			removed++
		}
	}
	return removed
}
