package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technosupport/ts-sentinel/internal/data"
)

func TestDensityBreakpoints(t *testing.T) {
	c := New(DefaultThresholds)

	tests := []struct {
		count int
		want  data.DensityLevel
	}{
		{0, data.DensityLow},
		{10, data.DensityLow},
		{11, data.DensityMedium},
		{20, data.DensityMedium},
		{21, data.DensityHigh},
		{30, data.DensityHigh},
		{31, data.DensityCritical},
		{500, data.DensityCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.DensityOf(tt.count), "count=%d", tt.count)
	}
}

func TestDensityMonotonic(t *testing.T) {
	rank := map[data.DensityLevel]int{
		data.DensityLow: 0, data.DensityMedium: 1, data.DensityHigh: 2, data.DensityCritical: 3,
	}
	c := New(DefaultThresholds)
	prev := rank[c.DensityOf(0)]
	for count := 1; count <= 100; count++ {
		cur := rank[c.DensityOf(count)]
		require.GreaterOrEqual(t, cur, prev, "density decreased at count=%d", count)
		prev = cur
	}
}

func TestDensityNegativeCountPanics(t *testing.T) {
	assert.Panics(t, func() { DensityWith(DefaultThresholds, -1) })
}

func TestSeverityForUnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() { SeverityFor(data.ActionKind("teleportation")) })
}

func TestSetThresholdsValidation(t *testing.T) {
	c := New(DefaultThresholds)

	err := c.SetThresholds(Thresholds{Medium: 20, High: 10, Critical: 30})
	assert.Error(t, err)
	assert.Equal(t, DefaultThresholds, c.Thresholds())

	require.NoError(t, c.SetThresholds(Thresholds{Medium: 5, High: 15, Critical: 40}))
	assert.Equal(t, data.DensityMedium, c.DensityOf(6))
	assert.Equal(t, data.DensityHigh, c.DensityOf(16))
}

func TestActionTableComplete(t *testing.T) {
	require.Len(t, ActionOrder, len(Actions))
	for _, k := range ActionOrder {
		p, ok := Actions[k]
		require.True(t, ok, "action %q missing from table", k)
		assert.True(t, p.Severity.Valid(), "action %q has invalid severity", k)
		assert.Greater(t, p.Weight, 0.0)
		assert.NotEmpty(t, p.Description)
	}
	assert.InDelta(t, 1.35, TotalWeight(), 0.001)
}
