// Package reportcache is a short-lived read-through cache for report queries.
// Keys carry a tag prefix so that any write to the underlying entities can
// invalidate every cached report in one call.
package reportcache

import (
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// TagReports groups every cached report and comparison result.
	TagReports = "reports"

	defaultTTL      = 2 * time.Minute
	cleanupInterval = 5 * time.Minute
)

type Cache struct {
	store *gocache.Cache
}

func New() *Cache {
	return &Cache{store: gocache.New(defaultTTL, cleanupInterval)}
}

// Key builds a cache key from a tag and the query parameters that identify
// the result.
func Key(tag string, parts ...string) string {
	return tag + ":" + strings.Join(parts, ":")
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *Cache) Set(key string, value interface{}) {
	c.store.Set(key, value, defaultTTL)
}

// InvalidateTag removes every entry whose key starts with the tag prefix.
func (c *Cache) InvalidateTag(tag string) int {
	prefix := tag + ":"
	removed := 0
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
			removed++
		}
	}
	return removed
}

// FormatRange renders a date range for key building.
func FormatRange(from, to time.Time) string {
	return fmt.Sprintf("%s_%s", from.Format("20060102"), to.Format("20060102"))
}
