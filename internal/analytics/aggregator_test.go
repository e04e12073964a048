package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technosupport/ts-sentinel/internal/crowd"
	"github.com/technosupport/ts-sentinel/internal/data"
)

type stubSource struct {
	events     []data.Event
	total      int
	breakdowns map[string]map[string]int
	gotFilter  data.EventFilter
}

func (s *stubSource) Find(_ context.Context, f data.EventFilter, p data.Page) ([]data.Event, int, error) {
	s.gotFilter = f
	return s.events, s.total, nil
}

func (s *stubSource) CountBy(_ context.Context, field string, f data.EventFilter) (map[string]int, error) {
	if m, ok := s.breakdowns[field]; ok {
		return m, nil
	}
	return map[string]int{}, nil
}

func TestParseWindow(t *testing.T) {
	for _, valid := range []string{"1h", "24h", "7d", "30d"} {
		w, err := ParseWindow(valid)
		require.NoError(t, err)
		assert.Equal(t, Window(valid), w)
	}
	_, err := ParseWindow("90d")
	assert.Error(t, err)
}

func TestAggregateWindowFilter(t *testing.T) {
	src := &stubSource{total: 7, breakdowns: map[string]map[string]int{
		"severity": {"critical": 2, "low": 5},
		"status":   {"active": 7},
	}}
	agg := New(src, crowd.NewBuffer(10))
	fixed := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	agg.Now = func() time.Time { return fixed }

	sum, err := agg.Aggregate(context.Background(), WindowDay, 5)
	require.NoError(t, err)

	require.NotNil(t, src.gotFilter.Start)
	assert.Equal(t, fixed.Add(-24*time.Hour), *src.gotFilter.Start)
	assert.Equal(t, 7, sum.Total)
	assert.Equal(t, 2, sum.BySeverity["critical"])
	assert.Equal(t, 7, sum.ByStatus["active"])
	assert.Equal(t, fixed, sum.GeneratedAt)
}

// Degraded store yields empty-but-valid results; the summary shape must hold.
func TestAggregateDegradedStore(t *testing.T) {
	src := &stubSource{events: []data.Event{}, total: 0, breakdowns: map[string]map[string]int{}}
	agg := New(src, crowd.NewBuffer(10))

	sum, err := agg.Aggregate(context.Background(), WindowHour, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Total)
	assert.NotNil(t, sum.BySeverity)
	assert.NotNil(t, sum.ByStatus)
	assert.NotNil(t, sum.Recent)
	assert.Equal(t, CrowdSummary{}, sum.Crowd)
}

func TestCrowdSummary(t *testing.T) {
	buf := crowd.NewBuffer(10)
	at := func(hour, count int) data.CrowdSample {
		return data.CrowdSample{
			Timestamp: time.Date(2026, 8, 29, hour, 0, 0, 0, time.UTC),
			Count:     count,
		}
	}
	buf.Append(at(9, 10))
	buf.Append(at(9, 30))
	buf.Append(at(14, 25))
	buf.Append(at(15, 5))

	agg := New(&stubSource{breakdowns: map[string]map[string]int{}}, buf)
	sum, err := agg.Aggregate(context.Background(), WindowHour, 1)
	require.NoError(t, err)

	assert.Equal(t, 5, sum.Crowd.Current, "current is the latest sample")
	assert.Equal(t, 30, sum.Crowd.Peak)
	assert.InDelta(t, 17.5, sum.Crowd.Average, 0.001)
	assert.Equal(t, 9, sum.Crowd.PeakHour, "hour 9 totals 40, the max")
}

func TestCrowdSummaryEmptyBuffer(t *testing.T) {
	agg := New(&stubSource{breakdowns: map[string]map[string]int{}}, crowd.NewBuffer(10))
	sum, err := agg.Aggregate(context.Background(), WindowMonth, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Crowd.Current)
	assert.Equal(t, 0.0, sum.Crowd.Average)
}
