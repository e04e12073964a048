package broadcast

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Dedup suppresses repeat publishes of the same event id within a TTL window,
// bounded by an LRU so memory stays flat under churn.
type Dedup struct {
	cache *lru.Cache[string, time.Time]
	ttl   time.Duration
}

func NewDedup(maxKeys int, ttl time.Duration) *Dedup {
	if maxKeys <= 0 {
		maxKeys = 1024
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	c, _ := lru.New[string, time.Time](maxKeys)
	return &Dedup{cache: c, ttl: ttl}
}

// Seen records the id and reports whether it was already published within the
// window.
func (d *Dedup) Seen(id string) bool {
	if at, ok := d.cache.Get(id); ok && time.Since(at) < d.ttl {
		return true
	}
	d.cache.Add(id, time.Now())
	return false
}
