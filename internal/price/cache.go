package price

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Cache is the persisted date→price mapping for one coin. Dates use the
// "2006-01-02" key format. A recorded date is never overwritten; missing
// dates stay missing until a later fill succeeds.
type Cache struct {
	path   string
	prices map[string]float64
}

// NewCache points a cache at its backing file without loading it.
func NewCache(path string) *Cache {
	return &Cache{path: path, prices: make(map[string]float64)}
}

// Load reads the persisted prices. A missing file yields an empty cache.
func (c *Cache) Load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read price cache: %w", err)
	}

	prices := make(map[string]float64)
	if err := json.Unmarshal(data, &prices); err != nil {
		return fmt.Errorf("parse price cache: %w", err)
	}
	c.prices = prices
	return nil
}

// Get returns the price for a date key if known.
func (c *Cache) Get(date string) (float64, bool) {
	price, ok := c.prices[date]
	return price, ok
}

// Put records a price for a date. Known dates are left untouched.
func (c *Cache) Put(date string, price float64) {
	if _, ok := c.prices[date]; ok {
		return
	}
	c.prices[date] = price
}

// Len returns the number of known dates.
func (c *Cache) Len() int {
	return len(c.prices)
}

// Snapshot returns a copy of the date→price mapping.
func (c *Cache) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(c.prices))
	for date, price := range c.prices {
		out[date] = price
	}
	return out
}

// Save persists the cache atomically via tmp+rename.
func (c *Cache) Save() error {
	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create price cache dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(c.prices, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal price cache: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write price cache tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("rename price cache: %w", err)
	}
	return nil
}
