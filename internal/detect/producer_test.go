package detect

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technosupport/ts-sentinel/internal/cameras"
	"github.com/technosupport/ts-sentinel/internal/classify"
	"github.com/technosupport/ts-sentinel/internal/data"
)

func newProducer(seed int64) *SyntheticProducer {
	return NewSyntheticProducer(
		cameras.DefaultRegistry(),
		classify.New(classify.DefaultThresholds),
		rand.New(rand.NewSource(seed)),
	)
}

func TestProduceEventInvariants(t *testing.T) {
	p := newProducer(1)
	ctx := context.Background()
	cls := classify.New(classify.DefaultThresholds)

	for i := 0; i < 500; i++ {
		e, err := p.ProduceEvent(ctx)
		require.NoError(t, err)

		assert.True(t, e.Confidence >= 0.6 && e.Confidence < 1.0, "confidence %f out of range", e.Confidence)
		assert.Equal(t, data.StatusActive, e.Status)
		assert.Equal(t, classify.SeverityFor(e.Action), e.Severity)
		assert.NotEmpty(t, e.CameraID)
		assert.NotEmpty(t, e.Description)
		require.NoError(t, e.Validate())

		if classify.IsCrowdAction(e.Action) {
			require.NotNil(t, e.CrowdCount, "crowd action %q missing count", e.Action)
			require.NotNil(t, e.DensityLevel)
			assert.True(t, *e.CrowdCount >= 10 && *e.CrowdCount < 60)
			assert.Equal(t, cls.DensityOf(*e.CrowdCount), *e.DensityLevel)
			assert.NotEmpty(t, e.Metadata["zone"], "crowd action %q missing zone hint", e.Action)
		} else {
			assert.Nil(t, e.CrowdCount)
			assert.Nil(t, e.DensityLevel)
		}
	}
}

func TestProduceSampleInvariants(t *testing.T) {
	p := newProducer(2)
	cls := classify.New(classify.DefaultThresholds)

	for i := 0; i < 200; i++ {
		s, err := p.ProduceSample(context.Background())
		require.NoError(t, err)
		assert.True(t, s.Count >= 1 && s.Count <= 50, "count %d out of range", s.Count)
		assert.Equal(t, cls.DensityOf(s.Count), s.Density)
		assert.NotEmpty(t, s.CameraID)
	}
}

// Relative selection bias must follow the raw weights: crowd_gathering (0.30)
// should land roughly 6x as often as weapon_detected (0.05).
func TestWeightedActionBias(t *testing.T) {
	p := newProducer(3)
	counts := map[data.ActionKind]int{}

	const n = 20000
	for i := 0; i < n; i++ {
		e, err := p.ProduceEvent(context.Background())
		require.NoError(t, err)
		counts[e.Action]++
	}

	total := classify.TotalWeight()
	for _, kind := range classify.ActionOrder {
		expected := classify.Actions[kind].Weight / total
		observed := float64(counts[kind]) / n
		assert.InDelta(t, expected, observed, 0.02, "action %s", kind)
	}

	ratio := float64(counts[data.ActionCrowdGathering]) / float64(counts[data.ActionWeaponDetected])
	assert.Greater(t, ratio, 4.0)
}
