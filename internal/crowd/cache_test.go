package crowd

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technosupport/ts-sentinel/internal/data"
)

func newTestCache(t *testing.T) (*LatestCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewLatestCache(rdb, 30*time.Second), mr
}

func TestCachePutGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	s := data.CrowdSample{
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Count:     23,
		Density:   data.DensityHigh,
		CameraID:  "CAM001",
		Location:  "Main Entrance",
	}
	require.NoError(t, c.Put(ctx, s))

	got, err := c.Get(ctx, "CAM001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 23, got.Count)
	assert.Equal(t, data.DensityHigh, got.Density)
}

func TestCacheMiss(t *testing.T) {
	c, _ := newTestCache(t)

	got, err := c.Get(context.Background(), "CAM999")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, data.CrowdSample{CameraID: "CAM002", Count: 5}))
	mr.FastForward(time.Minute)

	got, err := c.Get(ctx, "CAM002")
	require.NoError(t, err)
	assert.Nil(t, got)
}
