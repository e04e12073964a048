package crowd

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technosupport/ts-sentinel/internal/data"
)

func mkSample(i int) data.CrowdSample {
	return data.CrowdSample{
		Timestamp: time.Unix(int64(i), 0),
		Count:     i,
		Density:   data.DensityLow,
		CameraID:  fmt.Sprintf("CAM%03d", i%6+1),
	}
}

func TestBufferNeverExceedsCapacity(t *testing.T) {
	b := NewBuffer(100)
	for i := 0; i < 150; i++ {
		b.Append(mkSample(i))
	}
	assert.Equal(t, 100, b.Len())

	recent := b.Recent(100)
	require.Len(t, recent, 100)
	// newest first: counts 149 down to 50
	for i, s := range recent {
		assert.Equal(t, 149-i, s.Count, "index %d", i)
	}
}

func TestBufferRecentFewerThanRequested(t *testing.T) {
	b := NewBuffer(100)
	for i := 0; i < 3; i++ {
		b.Append(mkSample(i))
	}
	recent := b.Recent(10)
	require.Len(t, recent, 3)
	assert.Equal(t, 2, recent[0].Count)
	assert.Equal(t, 0, recent[2].Count)
}

func TestBufferLatest(t *testing.T) {
	b := NewBuffer(10)
	_, ok := b.Latest()
	assert.False(t, ok)

	b.Append(mkSample(1))
	b.Append(mkSample(2))
	latest, ok := b.Latest()
	require.True(t, ok)
	assert.Equal(t, 2, latest.Count)
}

func TestBufferRecentDoesNotMutate(t *testing.T) {
	b := NewBuffer(5)
	for i := 0; i < 5; i++ {
		b.Append(mkSample(i))
	}
	_ = b.Recent(5)
	_ = b.Recent(2)
	assert.Equal(t, 5, b.Len())
	latest, _ := b.Latest()
	assert.Equal(t, 4, latest.Count)
}

func TestBufferDefaultCapacity(t *testing.T) {
	b := NewBuffer(0)
	assert.Equal(t, DefaultCapacity, b.Cap())
}
