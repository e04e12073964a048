package crowd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/technosupport/ts-sentinel/internal/data"
)

const defaultCacheTTL = 30 * time.Second

// LatestCache keeps the most recent crowd sample per camera in Redis. It is
// advisory: the camera status endpoint reads it to synthesize online/offline,
// and a dead Redis degrades to cache misses, never errors upstream.
type LatestCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewLatestCache(r *redis.Client, ttl time.Duration) *LatestCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &LatestCache{Redis: r, TTL: ttl}
}

func key(cameraID string) string {
	return fmt.Sprintf("crowd:latest:%s", cameraID)
}

// Put stores the sample under its camera with TTL.
func (c *LatestCache) Put(ctx context.Context, s data.CrowdSample) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, key(s.CameraID), payload, c.TTL).Err()
}

// Get returns the latest sample for a camera, or nil if none is cached.
func (c *LatestCache) Get(ctx context.Context, cameraID string) (*data.CrowdSample, error) {
	raw, err := c.Redis.Get(ctx, key(cameraID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s data.CrowdSample
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	return &s, nil
}
